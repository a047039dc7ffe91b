package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Booking statuses used by the auto-checkout job. A booking leaves
// BOOKED/PENDING exactly once: the checkout transaction sets
// COMPLETED and Processed together.
const (
	BookingStatusBooked    = "BOOKED"
	BookingStatusPending   = "PENDING"
	BookingStatusCompleted = "COMPLETED"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RoomID *uint `gorm:"column:room_id;index" json:"roomId,omitempty"`

	GuestName string `gorm:"column:guest_name;size:255" json:"guestName"`
	Status    string `gorm:"column:status;size:64;index" json:"status"`

	// CheckIn is the scheduled arrival; CheckedInAt is the actual one and
	// takes precedence when billing. CheckOut is set on completion only.
	CheckIn     *time.Time `gorm:"column:check_in" json:"checkIn,omitempty"`
	CheckedInAt *time.Time `gorm:"column:checked_in_at" json:"checkedInAt,omitempty"`
	CheckOut    *time.Time `gorm:"column:check_out" json:"checkOut,omitempty"`

	DurationMinutes int     `gorm:"column:duration_minutes;default:0" json:"durationMinutes"`
	TotalAmount     float64 `gorm:"column:total_amount;default:0" json:"totalAmount"`

	// Processed marks the booking as already swept by the auto-checkout job.
	Processed bool `gorm:"column:processed;default:false;index" json:"processed"`

	AccompanyingGuests datatypes.JSON `gorm:"column:accompanying_guests" json:"accompanyingGuests,omitempty"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}

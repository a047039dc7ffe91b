package models

import "time"

// Checkout log outcomes.
const (
	CheckoutOutcomeSuccess = "SUCCESS"
	CheckoutOutcomeFailed  = "FAILED"
)

// CheckoutLog is the immutable audit record written for every auto-checkout
// attempt, success or failure. BookingID is nullable so a failure that
// happens before a booking is resolved can still be recorded.
type CheckoutLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID *uint `gorm:"index;column:booking_id" json:"booking_id"`
	RoomID    *uint `gorm:"index;column:room_id" json:"room_id"`

	ResourceName string `gorm:"column:resource_name;size:100" json:"resource_name"`
	GuestName    string `gorm:"column:guest_name;size:255" json:"guest_name"`

	// CheckoutDate is midnight of the run day in the process timezone;
	// CheckoutTime carries the clock portion ("15:04:05").
	CheckoutDate time.Time `gorm:"column:checkout_date;index" json:"checkout_date"`
	CheckoutTime string    `gorm:"column:checkout_time;size:16" json:"checkout_time"`

	Outcome string `gorm:"column:outcome;size:20;index" json:"outcome"`
	Note    string `gorm:"column:note;type:text" json:"note"`

	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

// PaymentMethodAutoCheckout tags payments created by the auto-checkout job
// so they can be told apart from front-desk payments.
const PaymentMethodAutoCheckout = "AUTO_CHECKOUT"

// Payment rows are written once and never mutated.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookingID uint      `gorm:"index;column:booking_id" json:"bookingId"`
	RoomID    *uint     `gorm:"index;column:room_id" json:"roomId,omitempty"`
	Amount    float64   `gorm:"column:amount" json:"amount"`
	Method    string    `gorm:"column:method;size:64;index" json:"method"`
	Note      string    `gorm:"column:note;type:text" json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

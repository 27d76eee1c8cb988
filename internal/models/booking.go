package models

import (
	"time"
)

// Booking lifecycle states.
const (
	BookingPendingPayment = "pending_payment"
	BookingConfirmed      = "confirmed"
	BookingCanceled       = "canceled"
	BookingCompleted      = "completed"
	BookingExpired        = "expired"
)

// Booking reserves a room for a guest. It starts in pending_payment and is
// confirmed once a payment transaction succeeds.
type Booking struct {
	BaseModel

	RoomID  string        `gorm:"type:uuid;index;not null" json:"room_id"`
	Room    *HomestayRoom `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	GuestID string        `gorm:"type:uuid;index;not null" json:"guest_id"`
	Guest   *User         `gorm:"foreignKey:GuestID" json:"guest,omitempty"`

	CheckIn  time.Time `gorm:"index;not null" json:"check_in"`
	CheckOut time.Time `gorm:"not null" json:"check_out"`
	Guests   int       `gorm:"not null" json:"guests"`

	Subtotal float64 `json:"subtotal"`
	Total    float64 `gorm:"not null" json:"total"`

	GuestNote string `json:"guest_note,omitempty"`
	Status    string `gorm:"default:pending_payment;index" json:"status"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

// Payment transaction types and states as reported by the gateway.
const (
	TransactionPayment = "payment"
	TransactionRefund  = "refund"

	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// PaymentTransaction mirrors a gateway transaction for a booking. This service
// only reads them; the payment gateway webhook writes them.
type PaymentTransaction struct {
	BaseModel

	BookingID            string  `gorm:"type:uuid;index;not null" json:"booking_id"`
	TransactionType      string  `gorm:"default:payment" json:"transaction_type"`
	Amount               float64 `gorm:"not null" json:"amount"`
	Status               string  `gorm:"not null" json:"status"`
	GatewayTransactionID string  `gorm:"index" json:"gateway_transaction_id"`
}

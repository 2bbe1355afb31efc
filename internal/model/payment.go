package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodCard   PaymentMethod = "Card"
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodWallet PaymentMethod = "Wallet"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodUPI,
	PaymentMethodWallet,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusCompleted || s == PaymentStatusFailed
}

type Payment struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BookingID uuid.UUID     `gorm:"type:uuid;not null" json:"booking_id"`
	Amount    float64       `gorm:"type:numeric(10,2);not null" json:"amount"`
	Method    PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'Cash'" json:"payment_method"`
	Status    PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'Pending'" json:"payment_status"`
	PaidAt    time.Time     `gorm:"column:paid_at;autoCreateTime" json:"paid_at"`
}

func (Payment) TableName() string {
	return "payments"
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type Availability string

const (
	AvailabilityAvailable Availability = "Available"
	AvailabilityBusy      Availability = "Busy"
	AvailabilityOffline   Availability = "Offline"
)

var Availabilities = []Availability{
	AvailabilityAvailable,
	AvailabilityBusy,
	AvailabilityOffline,
}

func (a Availability) Valid() bool {
	return a == AvailabilityAvailable || a == AvailabilityBusy || a == AvailabilityOffline
}

type Driver struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name          string       `gorm:"type:varchar(100);not null" json:"name"`
	LicenseNumber string       `gorm:"type:varchar(50);not null" json:"license_number"`
	Phone         string       `gorm:"type:varchar(20);not null" json:"phone"`
	Email         string       `gorm:"type:varchar(100)" json:"email"`
	Availability  Availability `gorm:"type:driver_availability;not null;default:'Available'" json:"availability"`
	AccountID     *uuid.UUID   `gorm:"type:uuid" json:"account_id"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (Driver) TableName() string {
	return "drivers"
}

func (d Driver) IsAvailable() bool {
	return d.Availability == AvailabilityAvailable
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type VehicleType string

const (
	VehicleTypeSedan     VehicleType = "Sedan"
	VehicleTypeSUV       VehicleType = "SUV"
	VehicleTypeHatchback VehicleType = "Hatchback"
	VehicleTypeLuxury    VehicleType = "Luxury"
)

var VehicleTypes = []VehicleType{
	VehicleTypeSedan,
	VehicleTypeSUV,
	VehicleTypeHatchback,
	VehicleTypeLuxury,
}

func (t VehicleType) Valid() bool {
	for _, known := range VehicleTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Vehicle struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Model        string      `gorm:"type:varchar(100);not null" json:"model"`
	LicensePlate string      `gorm:"type:varchar(20);not null" json:"license_plate"`
	VehicleType  VehicleType `gorm:"type:vehicle_type;not null;default:'Sedan'" json:"vehicle_type"`
	Color        string      `gorm:"type:varchar(30)" json:"color"`
	Year         *int        `json:"year"`
	DriverID     *uuid.UUID  `gorm:"type:uuid" json:"driver_id"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

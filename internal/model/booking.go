package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "Pending"
	BookingStatusConfirmed  BookingStatus = "Confirmed"
	BookingStatusInProgress BookingStatus = "In Progress"
	BookingStatusCompleted  BookingStatus = "Completed"
	BookingStatusCancelled  BookingStatus = "Cancelled"
)

var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// ActiveBookingStatuses are the statuses in which a booking holds its driver.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

func (s BookingStatus) Active() bool {
	return s == BookingStatusConfirmed || s == BookingStatusInProgress
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type Booking struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PassengerID    uuid.UUID     `gorm:"type:uuid;not null" json:"passenger_id"`
	DriverID       *uuid.UUID    `gorm:"type:uuid" json:"driver_id"`
	PickupLocation string        `gorm:"type:varchar(255);not null" json:"pickup_location"`
	Destination    string        `gorm:"type:varchar(255);not null" json:"destination"`
	Status         BookingStatus `gorm:"type:booking_status;not null;default:'Pending'" json:"status"`
	Fare           *float64      `gorm:"type:numeric(10,2)" json:"fare"`
	DistanceKm     *float64      `gorm:"column:distance_km;type:numeric(10,2)" json:"distance_km"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt    *time.Time    `json:"completed_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b Booking) HasDriver() bool {
	return b.DriverID != nil
}

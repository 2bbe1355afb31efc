package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-booking-service/internal/model"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type BookingFilter struct {
	PassengerID *uuid.UUID
	DriverID    *uuid.UUID
	Statuses    []model.BookingStatus
	DateFrom    *time.Time
	DateTo      *time.Time
	Search      string
	Limit       int
	Offset      int
}

func (r *BookingRepository) List(ctx context.Context, filter BookingFilter) ([]model.Booking, error) {
	query := r.db.WithContext(ctx).Model(&model.Booking{})

	if filter.PassengerID != nil {
		query = query.Where("bookings.passenger_id = ?", *filter.PassengerID)
	}
	if filter.DriverID != nil {
		query = query.Where("bookings.driver_id = ?", *filter.DriverID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("bookings.status IN ?", filter.Statuses)
	}
	if filter.DateFrom != nil {
		query = query.Where("bookings.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("bookings.created_at <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(bookings.pickup_location ILIKE ? OR bookings.destination ILIKE ?)", search, search)
	}

	query = paginate(query, filter.Limit, filter.Offset)

	var bookings []model.Booking
	if err := query.Order("bookings.created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// Update overwrites every mutable column of the booking.
func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"passenger_id":    booking.PassengerID,
			"driver_id":       booking.DriverID,
			"pickup_location": booking.PickupLocation,
			"destination":     booking.Destination,
			"status":          booking.Status,
			"fare":            booking.Fare,
			"distance_km":     booking.DistanceKm,
			"completed_at":    booking.CompletedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus, completedAt *time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		})
	return res.RowsAffected, res.Error
}

// AssignDriver binds the driver and moves the booking to Confirmed.
func (r *BookingRepository) AssignDriver(ctx context.Context, id, driverID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"driver_id":    driverID,
			"status":       model.BookingStatusConfirmed,
			"completed_at": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *BookingRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Booking{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *BookingRepository) SumCompletedFare(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Select("COALESCE(SUM(fare), 0)").
		Where("status = ? AND fare IS NOT NULL", model.BookingStatusCompleted).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *BookingRepository) LogStatusChange(ctx context.Context, logEntry *model.BookingStatusLog) error {
	return r.db.WithContext(ctx).Create(logEntry).Error
}

func (r *BookingRepository) StatusHistory(ctx context.Context, bookingID uuid.UUID) ([]model.BookingStatusLog, error) {
	var entries []model.BookingStatusLog
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}

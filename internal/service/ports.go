package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/repository"
)

// The services depend on these record stores rather than on gorm directly.
// The repository package provides the postgres-backed implementations.

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	List(ctx context.Context, filter repository.BookingFilter) ([]model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus, completedAt *time.Time) (int64, error)
	AssignDriver(ctx context.Context, id, driverID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
	SumCompletedFare(ctx context.Context) (float64, error)
	LogStatusChange(ctx context.Context, entry *model.BookingStatusLog) error
	StatusHistory(ctx context.Context, bookingID uuid.UUID) ([]model.BookingStatusLog, error)
}

type DriverStore interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Driver, error)
	GetByLicense(ctx context.Context, license string) (*model.Driver, error)
	List(ctx context.Context, filter repository.DriverFilter) ([]model.Driver, error)
	Update(ctx context.Context, driver *model.Driver) (int64, error)
	SetAvailability(ctx context.Context, id uuid.UUID, availability model.Availability) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ExistsByLicense(ctx context.Context, license string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Count(ctx context.Context, availability *model.Availability) (int64, error)
}

type PassengerStore interface {
	Create(ctx context.Context, passenger *model.Passenger) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Passenger, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Passenger, error)
	GetByEmail(ctx context.Context, email string) (*model.Passenger, error)
	List(ctx context.Context, filter repository.PassengerFilter) ([]model.Passenger, error)
	Update(ctx context.Context, passenger *model.Passenger) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type VehicleStore interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	GetByDriver(ctx context.Context, driverID uuid.UUID) (*model.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	List(ctx context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error)
	Update(ctx context.Context, vehicle *model.Vehicle) (int64, error)
	SetDriver(ctx context.Context, id uuid.UUID, driverID *uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ExistsByPlate(ctx context.Context, plate string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type PaymentStore interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter repository.PaymentFilter) ([]model.Payment, error)
	Update(ctx context.Context, payment *model.Payment) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, paidAt *time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
	SumCompleted(ctx context.Context) (float64, error)
	RevenueByMethod(ctx context.Context) (map[model.PaymentMethod]float64, error)
}

type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, role *model.UserRole) ([]model.Account, error)
}

// StatsCache holds the last computed dashboard stats.
type StatsCache interface {
	Get(ctx context.Context) (*model.DashboardStats, bool)
	Set(ctx context.Context, stats *model.DashboardStats)
	Invalidate(ctx context.Context)
}

// Recorder receives workflow events for metrics.
type Recorder interface {
	BookingCreated()
	BookingTransition(status model.BookingStatus)
	SideEffectFailed(step string)
}

type nopStatsCache struct{}

func (nopStatsCache) Get(context.Context) (*model.DashboardStats, bool) { return nil, false }
func (nopStatsCache) Set(context.Context, *model.DashboardStats)        {}
func (nopStatsCache) Invalidate(context.Context)                        {}

type nopRecorder struct{}

func (nopRecorder) BookingCreated()                        {}
func (nopRecorder) BookingTransition(_ model.BookingStatus) {}
func (nopRecorder) SideEffectFailed(_ string)              {}

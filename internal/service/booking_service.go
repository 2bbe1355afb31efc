package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/repository"
)

type BookingService struct {
	bookings   BookingStore
	drivers    DriverStore
	passengers PassengerStore
	fares      FareCalculator
	recorder   Recorder
	stats      StatsCache
	log        zerolog.Logger
	now        func() time.Time
}

func NewBookingService(
	bookings BookingStore,
	drivers DriverStore,
	passengers PassengerStore,
	fares FareCalculator,
	recorder Recorder,
	log zerolog.Logger,
) *BookingService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &BookingService{
		bookings:   bookings,
		drivers:    drivers,
		passengers: passengers,
		fares:      fares,
		recorder:   recorder,
		stats:      nopStatsCache{},
		log:        log.With().Str("component", "booking-workflow").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetStatsCache makes booking writes drop the cached dashboard stats.
func (s *BookingService) SetStatsCache(cache StatsCache) {
	if cache != nil {
		s.stats = cache
	}
}

type CreateBookingInput struct {
	PassengerID    uuid.UUID
	PickupLocation string
	Destination    string
	DistanceKm     *float64
	DriverID       *uuid.UUID
}

// AssignmentResult carries the assigned booking together with any
// driver availability updates that did not go through.
type AssignmentResult struct {
	Booking  *model.Booking `json:"booking"`
	Warnings []string       `json:"warnings,omitempty"`
}

func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*model.Booking, error) {
	pickup, err := requireText("pickup location", input.PickupLocation, 255)
	if err != nil {
		return nil, err
	}
	destination, err := requireText("destination", input.Destination, 255)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		PassengerID:    input.PassengerID,
		PickupLocation: pickup,
		Destination:    destination,
		Status:         model.BookingStatusPending,
	}

	if input.DistanceKm != nil {
		fare, err := s.fareFor(*input.DistanceKm)
		if err != nil {
			return nil, err
		}
		distance := *input.DistanceKm
		booking.DistanceKm = &distance
		booking.Fare = &fare
	}

	if _, err := s.passengers.GetByID(ctx, input.PassengerID); err != nil {
		return nil, storeErr("load passenger", err, "passenger")
	}
	if input.DriverID != nil {
		if _, err := s.drivers.GetByID(ctx, *input.DriverID); err != nil {
			return nil, storeErr("load driver", err, "driver")
		}
		driverID := *input.DriverID
		booking.DriverID = &driverID
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, storeErr("create booking", err, "booking")
	}
	s.recorder.BookingCreated()
	s.logStatusChange(ctx, booking.ID, nil, model.BookingStatusPending, "booking created")
	s.stats.Invalidate(ctx)

	return booking, nil
}

// AssignDriver binds driverID to the booking and confirms it. The booking
// write is authoritative; the availability updates that follow are
// independent steps whose failures are reported as warnings.
func (s *BookingService) AssignDriver(ctx context.Context, bookingID, driverID uuid.UUID) (*AssignmentResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load booking", err, "booking")
	}
	if booking.Status.Terminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidStatus, booking.Status)
	}
	if _, err := s.drivers.GetByID(ctx, driverID); err != nil {
		return nil, storeErr("load driver", err, "driver")
	}

	rows, err := s.bookings.AssignDriver(ctx, bookingID, driverID)
	if err := affected("assign driver", rows, err, "booking"); err != nil {
		return nil, err
	}

	previousDriver := booking.DriverID
	previousStatus := booking.Status
	booking.DriverID = &driverID
	booking.Status = model.BookingStatusConfirmed
	booking.CompletedAt = nil

	// repeating an assignment that is already in place is not a transition
	driverChanged := previousDriver == nil || *previousDriver != driverID
	if previousStatus != model.BookingStatusConfirmed || driverChanged {
		s.recorder.BookingTransition(model.BookingStatusConfirmed)
		s.logStatusChange(ctx, booking.ID, &previousStatus, model.BookingStatusConfirmed, "driver "+driverID.String()+" assigned")
	}

	result := &AssignmentResult{Booking: booking}

	if previousDriver != nil && *previousDriver != driverID {
		if err := s.setAvailability(ctx, *previousDriver, model.AvailabilityAvailable); err != nil {
			s.log.Warn().Err(err).
				Str("booking_id", bookingID.String()).
				Str("driver_id", previousDriver.String()).
				Msg("failed to release previous driver")
			s.recorder.SideEffectFailed("release_previous_driver")
			result.Warnings = append(result.Warnings, fmt.Sprintf("previous driver %s was not released: %v", previousDriver, err))
		}
	}

	if err := s.setAvailability(ctx, driverID, model.AvailabilityBusy); err != nil {
		s.log.Warn().Err(err).
			Str("booking_id", bookingID.String()).
			Str("driver_id", driverID.String()).
			Msg("failed to mark driver busy")
		s.recorder.SideEffectFailed("mark_driver_busy")
		result.Warnings = append(result.Warnings, fmt.Sprintf("driver %s was not marked busy: %v", driverID, err))
	}
	s.stats.Invalidate(ctx)

	return result, nil
}

// UpdateStatus moves the booking along the lifecycle. Driver availability
// is left untouched.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uuid.UUID, target model.BookingStatus) (*model.Booking, error) {
	if !target.Valid() {
		return nil, invalid("unknown booking status %q", target)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load booking", err, "booking")
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, booking.Status, target)
	}

	var completedAt *time.Time
	if target == model.BookingStatusCompleted {
		now := s.now()
		completedAt = &now
	}

	rows, err := s.bookings.UpdateStatus(ctx, bookingID, target, completedAt)
	if err := affected("update booking status", rows, err, "booking"); err != nil {
		return nil, err
	}

	prev := booking.Status
	booking.Status = target
	booking.CompletedAt = completedAt

	s.recorder.BookingTransition(target)
	s.logStatusChange(ctx, booking.ID, &prev, target, "")
	s.stats.Invalidate(ctx)

	return booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled)
}

func (s *BookingService) Complete(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, model.BookingStatusCompleted)
}

// UpdateBookingInput is a partial update: nil fields keep their stored value.
type UpdateBookingInput struct {
	PassengerID    *uuid.UUID
	DriverID       *uuid.UUID
	PickupLocation *string
	Destination    *string
	Status         *model.BookingStatus
	DistanceKm     *float64
	Fare           *float64
}

func (s *BookingService) Update(ctx context.Context, bookingID uuid.UUID, input UpdateBookingInput) (*model.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load booking", err, "booking")
	}
	updated := *current

	if input.PassengerID != nil && *input.PassengerID != current.PassengerID {
		if _, err := s.passengers.GetByID(ctx, *input.PassengerID); err != nil {
			return nil, storeErr("load passenger", err, "passenger")
		}
		updated.PassengerID = *input.PassengerID
	}
	if input.DriverID != nil && (current.DriverID == nil || *input.DriverID != *current.DriverID) {
		if _, err := s.drivers.GetByID(ctx, *input.DriverID); err != nil {
			return nil, storeErr("load driver", err, "driver")
		}
		driverID := *input.DriverID
		updated.DriverID = &driverID
	}
	if input.PickupLocation != nil {
		if updated.PickupLocation, err = requireText("pickup location", *input.PickupLocation, 255); err != nil {
			return nil, err
		}
	}
	if input.Destination != nil {
		if updated.Destination, err = requireText("destination", *input.Destination, 255); err != nil {
			return nil, err
		}
	}

	if input.Fare != nil {
		if *input.Fare < 0 {
			return nil, invalid("fare must not be negative")
		}
		fare := roundCents(*input.Fare)
		updated.Fare = &fare
	}
	if input.DistanceKm != nil && (current.DistanceKm == nil || *input.DistanceKm != *current.DistanceKm) {
		fare, err := s.fareFor(*input.DistanceKm)
		if err != nil {
			return nil, err
		}
		distance := *input.DistanceKm
		updated.DistanceKm = &distance
		updated.Fare = &fare
	}

	statusChanged := input.Status != nil && *input.Status != current.Status
	if statusChanged {
		target := *input.Status
		if !target.Valid() {
			return nil, invalid("unknown booking status %q", target)
		}
		if !current.Status.CanTransitionTo(target) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, current.Status, target)
		}
		updated.Status = target
		updated.CompletedAt = nil
		if target == model.BookingStatusCompleted {
			now := s.now()
			updated.CompletedAt = &now
		}
	}

	rows, err := s.bookings.Update(ctx, &updated)
	if err := affected("update booking", rows, err, "booking"); err != nil {
		return nil, err
	}

	if statusChanged {
		prev := current.Status
		s.recorder.BookingTransition(updated.Status)
		s.logStatusChange(ctx, updated.ID, &prev, updated.Status, "booking updated")
	}
	s.stats.Invalidate(ctx)

	return &updated, nil
}

func (s *BookingService) Delete(ctx context.Context, bookingID uuid.UUID) error {
	rows, err := s.bookings.Delete(ctx, bookingID)
	if err := affected("delete booking", rows, err, "booking"); err != nil {
		return err
	}
	s.stats.Invalidate(ctx)
	return nil
}

func (s *BookingService) Get(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load booking", err, "booking")
	}
	return booking, nil
}

func (s *BookingService) History(ctx context.Context, bookingID uuid.UUID) ([]model.BookingStatusLog, error) {
	if _, err := s.Get(ctx, bookingID); err != nil {
		return nil, err
	}
	entries, err := s.bookings.StatusHistory(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load status history", err, "booking")
	}
	return entries, nil
}

type ListBookingsOptions struct {
	PassengerID *uuid.UUID
	DriverID    *uuid.UUID
	Statuses    []model.BookingStatus
	DateFrom    *time.Time
	DateTo      *time.Time
	Search      string
	Limit       int
	Offset      int
}

func (s *BookingService) List(ctx context.Context, opts ListBookingsOptions) ([]model.Booking, error) {
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{
		PassengerID: opts.PassengerID,
		DriverID:    opts.DriverID,
		Statuses:    opts.Statuses,
		DateFrom:    opts.DateFrom,
		DateTo:      opts.DateTo,
		Search:      strings.TrimSpace(opts.Search),
		Limit:       opts.Limit,
		Offset:      opts.Offset,
	})
	if err != nil {
		return nil, storeErr("list bookings", err, "booking")
	}
	return bookings, nil
}

// ListFor restricts the listing to what the principal may see: passengers
// and drivers only get their own bookings.
func (s *BookingService) ListFor(ctx context.Context, principal model.Principal, opts ListBookingsOptions) ([]model.Booking, error) {
	switch {
	case principal.IsAdmin():
	case principal.IsPassenger():
		if principal.ProfileID == nil {
			return nil, ErrPermissionDenied
		}
		opts.PassengerID = principal.ProfileID
	case principal.IsDriver():
		if principal.ProfileID == nil {
			return nil, ErrPermissionDenied
		}
		opts.DriverID = principal.ProfileID
	default:
		return nil, ErrPermissionDenied
	}
	return s.List(ctx, opts)
}

// CanAccess reports whether the principal may read or act on the booking.
func CanAccess(principal model.Principal, booking *model.Booking) bool {
	switch {
	case principal.IsAdmin():
		return true
	case principal.IsPassenger():
		return principal.Owns(booking.PassengerID)
	case principal.IsDriver():
		return booking.DriverID != nil && principal.Owns(*booking.DriverID)
	default:
		return false
	}
}

func (s *BookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
	return s.List(ctx, ListBookingsOptions{})
}

func (s *BookingService) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]model.Booking, error) {
	return s.List(ctx, ListBookingsOptions{PassengerID: &passengerID})
}

func (s *BookingService) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]model.Booking, error) {
	return s.List(ctx, ListBookingsOptions{DriverID: &driverID})
}

func (s *BookingService) ListByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error) {
	if !status.Valid() {
		return nil, invalid("unknown booking status %q", status)
	}
	return s.List(ctx, ListBookingsOptions{Statuses: []model.BookingStatus{status}})
}

func (s *BookingService) ListPending(ctx context.Context) ([]model.Booking, error) {
	return s.ListByStatus(ctx, model.BookingStatusPending)
}

func (s *BookingService) ListActive(ctx context.Context) ([]model.Booking, error) {
	return s.List(ctx, ListBookingsOptions{Statuses: model.ActiveBookingStatuses})
}

func (s *BookingService) ListCompleted(ctx context.Context) ([]model.Booking, error) {
	return s.ListByStatus(ctx, model.BookingStatusCompleted)
}

func (s *BookingService) Count(ctx context.Context) (int64, error) {
	total, err := s.bookings.Count(ctx)
	if err != nil {
		return 0, storeErr("count bookings", err, "booking")
	}
	return total, nil
}

// TotalRevenue sums the fare of completed bookings that have one.
func (s *BookingService) TotalRevenue(ctx context.Context) (float64, error) {
	total, err := s.bookings.SumCompletedFare(ctx)
	if err != nil {
		return 0, storeErr("sum revenue", err, "booking")
	}
	return roundCents(total), nil
}

func (s *BookingService) fareFor(distanceKm float64) (float64, error) {
	if distanceKm <= 0 {
		return 0, invalid("distance must be positive")
	}
	return s.fares.Fare(distanceKm)
}

func (s *BookingService) setAvailability(ctx context.Context, driverID uuid.UUID, availability model.Availability) error {
	rows, err := s.drivers.SetAvailability(ctx, driverID, availability)
	return affected("set driver availability", rows, err, "driver")
}

func (s *BookingService) logStatusChange(ctx context.Context, bookingID uuid.UUID, prev *model.BookingStatus, next model.BookingStatus, note string) {
	if err := s.bookings.LogStatusChange(ctx, &model.BookingStatusLog{
		BookingID: bookingID,
		OldStatus: prev,
		NewStatus: next,
		Note:      note,
	}); err != nil {
		s.log.Warn().Err(err).Str("booking_id", bookingID.String()).Msg("failed to write status log")
		s.recorder.SideEffectFailed("status_log")
	}
}

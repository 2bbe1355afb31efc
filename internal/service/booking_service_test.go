package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxi-booking-service/internal/model"
)

type bookingFixture struct {
	svc        *BookingService
	bookings   *fakeBookings
	drivers    *fakeDrivers
	passengers *fakePassengers
	recorder   *countingRecorder
	now        time.Time
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		bookings:   newFakeBookings(),
		drivers:    newFakeDrivers(),
		passengers: newFakePassengers(),
		recorder:   &countingRecorder{},
		now:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewBookingService(f.bookings, f.drivers, f.passengers, NewFareCalculator(DefaultBaseFare, DefaultPerKm), f.recorder, zerolog.Nop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *bookingFixture) create(t *testing.T, passengerID uuid.UUID, distance *float64) *model.Booking {
	t.Helper()
	booking, err := f.svc.Create(context.Background(), CreateBookingInput{
		PassengerID:    passengerID,
		PickupLocation: "Home",
		Destination:    "Office",
		DistanceKm:     distance,
	})
	require.NoError(t, err)
	return booking
}

func km(v float64) *float64 { return &v }

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture(t)
	passenger := f.passengers.add("Asha")
	driver := f.drivers.add("Ravi", model.AvailabilityAvailable)

	t.Run("computes fare from distance", func(t *testing.T) {
		booking := f.create(t, passenger, km(10))
		assert.Equal(t, model.BookingStatusPending, booking.Status)
		require.NotNil(t, booking.Fare)
		assert.Equal(t, 200.0, *booking.Fare)
		assert.Nil(t, booking.CompletedAt)
	})

	t.Run("no distance leaves fare empty", func(t *testing.T) {
		booking := f.create(t, passenger, nil)
		assert.Nil(t, booking.Fare)
		assert.Nil(t, booking.DistanceKm)
	})

	t.Run("stays pending when a driver is supplied", func(t *testing.T) {
		booking, err := f.svc.Create(context.Background(), CreateBookingInput{
			PassengerID:    passenger,
			PickupLocation: "Airport",
			Destination:    "Hotel",
			DriverID:       &driver,
		})
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusPending, booking.Status)
		assert.Equal(t, driver, *booking.DriverID)
		assert.Equal(t, model.AvailabilityAvailable, f.drivers.availability(driver))
	})

	t.Run("rejects non-positive distance", func(t *testing.T) {
		for _, d := range []float64{0, -3} {
			_, err := f.svc.Create(context.Background(), CreateBookingInput{
				PassengerID: passenger, PickupLocation: "A", Destination: "B", DistanceKm: km(d),
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
		}
	})

	t.Run("rejects blank locations", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), CreateBookingInput{PassengerID: passenger, PickupLocation: " ", Destination: "B"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown passenger is not found", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), CreateBookingInput{PassengerID: uuid.New(), PickupLocation: "A", Destination: "B"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown driver is not found", func(t *testing.T) {
		missing := uuid.New()
		_, err := f.svc.Create(context.Background(), CreateBookingInput{PassengerID: passenger, PickupLocation: "A", Destination: "B", DriverID: &missing})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.Equal(t, 3, f.recorder.created)
}

func TestAssignDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("reassignment releases the previous driver", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), km(4))
		d1 := f.drivers.add("D1", model.AvailabilityAvailable)
		d2 := f.drivers.add("D2", model.AvailabilityAvailable)

		_, err := f.svc.AssignDriver(ctx, booking.ID, d1)
		require.NoError(t, err)
		assert.Equal(t, model.AvailabilityBusy, f.drivers.availability(d1))

		result, err := f.svc.AssignDriver(ctx, booking.ID, d2)
		require.NoError(t, err)
		assert.Empty(t, result.Warnings)
		assert.Equal(t, model.AvailabilityAvailable, f.drivers.availability(d1))
		assert.Equal(t, model.AvailabilityBusy, f.drivers.availability(d2))

		stored, err := f.svc.Get(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusConfirmed, stored.Status)
		assert.Equal(t, d2, *stored.DriverID)
	})

	t.Run("same driver twice stays busy", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)
		d1 := f.drivers.add("D1", model.AvailabilityAvailable)

		_, err := f.svc.AssignDriver(ctx, booking.ID, d1)
		require.NoError(t, err)
		_, err = f.svc.AssignDriver(ctx, booking.ID, d1)
		require.NoError(t, err)
		assert.Equal(t, model.AvailabilityBusy, f.drivers.availability(d1))
	})

	t.Run("repeating the same assignment records no transition", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)
		d1 := f.drivers.add("D1", model.AvailabilityAvailable)
		d2 := f.drivers.add("D2", model.AvailabilityAvailable)

		_, err := f.svc.AssignDriver(ctx, booking.ID, d1)
		require.NoError(t, err)
		_, err = f.svc.AssignDriver(ctx, booking.ID, d1)
		require.NoError(t, err)

		history, err := f.svc.History(ctx, booking.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, model.BookingStatusPending, history[0].NewStatus)
		assert.Equal(t, model.BookingStatusConfirmed, history[1].NewStatus)
		assert.Equal(t, []model.BookingStatus{model.BookingStatusConfirmed}, f.recorder.transitions)

		_, err = f.svc.AssignDriver(ctx, booking.ID, d2)
		require.NoError(t, err)
		history, err = f.svc.History(ctx, booking.ID)
		require.NoError(t, err)
		assert.Len(t, history, 3)
		assert.Len(t, f.recorder.transitions, 2)
	})

	t.Run("overwrites an in-progress booking back to confirmed", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)
		d1 := f.drivers.add("D1", model.AvailabilityAvailable)
		d2 := f.drivers.add("D2", model.AvailabilityAvailable)

		_, err := f.svc.AssignDriver(ctx, booking.ID, d1)
		require.NoError(t, err)
		_, err = f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusInProgress)
		require.NoError(t, err)

		result, err := f.svc.AssignDriver(ctx, booking.ID, d2)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusConfirmed, result.Booking.Status)
	})

	t.Run("terminal bookings cannot be reassigned", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)
		_, err := f.svc.Cancel(ctx, booking.ID)
		require.NoError(t, err)

		_, err = f.svc.AssignDriver(ctx, booking.ID, f.drivers.add("D1", model.AvailabilityAvailable))
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("missing booking or driver", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.AssignDriver(ctx, uuid.New(), f.drivers.add("D1", model.AvailabilityAvailable))
		assert.ErrorIs(t, err, ErrNotFound)

		booking := f.create(t, f.passengers.add("Asha"), nil)
		_, err = f.svc.AssignDriver(ctx, booking.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("availability failures become warnings", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)
		d1 := f.drivers.add("D1", model.AvailabilityAvailable)
		d2 := f.drivers.add("D2", model.AvailabilityAvailable)

		_, err := f.svc.AssignDriver(ctx, booking.ID, d1)
		require.NoError(t, err)

		f.drivers.availabilityErr[d1] = errors.New("connection reset")
		f.drivers.availabilityErr[d2] = errors.New("connection reset")

		result, err := f.svc.AssignDriver(ctx, booking.ID, d2)
		require.NoError(t, err)
		assert.Len(t, result.Warnings, 2)
		assert.Equal(t, model.BookingStatusConfirmed, result.Booking.Status)
		assert.Equal(t, d2, *result.Booking.DriverID)
		assert.Equal(t, []string{"release_previous_driver", "mark_driver_busy"}, f.recorder.failures)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("completion stamps the timestamp", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)

		confirmed, err := f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusConfirmed)
		require.NoError(t, err)
		assert.Nil(t, confirmed.CompletedAt)

		_, err = f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusInProgress)
		require.NoError(t, err)
		completed, err := f.svc.Complete(ctx, booking.ID)
		require.NoError(t, err)
		require.NotNil(t, completed.CompletedAt)
		assert.Equal(t, f.now, *completed.CompletedAt)
	})

	t.Run("illegal transitions are rejected", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)

		_, err := f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusCompleted)
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Equal(t, KindInvalid, KindOf(err))

		_, err = f.svc.Cancel(ctx, booking.ID)
		require.NoError(t, err)
		_, err = f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusPending)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown status is invalid", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)
		_, err := f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatus("Lost"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.UpdateStatus(ctx, uuid.New(), model.BookingStatusConfirmed)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("completion does not release the driver", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)
		d1 := f.drivers.add("D1", model.AvailabilityAvailable)
		_, err := f.svc.AssignDriver(ctx, booking.ID, d1)
		require.NoError(t, err)
		_, err = f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusInProgress)
		require.NoError(t, err)
		_, err = f.svc.Complete(ctx, booking.ID)
		require.NoError(t, err)

		assert.Equal(t, model.AvailabilityBusy, f.drivers.availability(d1))
	})

	t.Run("status log failures do not fail the write", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)
		f.bookings.logErr = errors.New("disk full")

		updated, err := f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusConfirmed, updated.Status)
		assert.Contains(t, f.recorder.failures, "status_log")
	})
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("new distance recomputes fare and discards supplied fare", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), km(2))

		updated, err := f.svc.Update(ctx, booking.ID, UpdateBookingInput{DistanceKm: km(12.5), Fare: km(999)})
		require.NoError(t, err)
		assert.Equal(t, 237.5, *updated.Fare)
		assert.Equal(t, 12.5, *updated.DistanceKm)
	})

	t.Run("omitted fields keep stored values", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), km(2))

		dest := "Station"
		updated, err := f.svc.Update(ctx, booking.ID, UpdateBookingInput{Destination: &dest})
		require.NoError(t, err)
		assert.Equal(t, "Home", updated.PickupLocation)
		assert.Equal(t, "Station", updated.Destination)
		assert.Equal(t, 80.0, *updated.Fare)
		assert.Equal(t, model.BookingStatusPending, updated.Status)
	})

	t.Run("fare may be set when distance is unchanged", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), km(2))

		updated, err := f.svc.Update(ctx, booking.ID, UpdateBookingInput{DistanceKm: km(2), Fare: km(75)})
		require.NoError(t, err)
		assert.Equal(t, 75.0, *updated.Fare)
	})

	t.Run("status change is validated", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := f.create(t, f.passengers.add("Asha"), nil)

		completed := model.BookingStatusCompleted
		_, err := f.svc.Update(ctx, booking.ID, UpdateBookingInput{Status: &completed})
		assert.ErrorIs(t, err, ErrInvalidStatus)

		confirmed := model.BookingStatusConfirmed
		updated, err := f.svc.Update(ctx, booking.ID, UpdateBookingInput{Status: &confirmed})
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusConfirmed, updated.Status)
		assert.Nil(t, updated.CompletedAt)
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.Update(ctx, uuid.New(), UpdateBookingInput{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.create(t, f.passengers.add("Asha"), nil)

	require.NoError(t, f.svc.Delete(ctx, booking.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, booking.ID), ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestBookingQueries(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	p1 := f.passengers.add("Asha")
	p2 := f.passengers.add("Ben")
	d1 := f.drivers.add("D1", model.AvailabilityAvailable)

	first := f.create(t, p1, km(1))
	second := f.create(t, p1, km(2))
	third := f.create(t, p2, km(3))

	_, err := f.svc.AssignDriver(ctx, second.ID, d1)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, third.ID)
	require.NoError(t, err)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, first.ID, all[2].ID)

	byPassenger, err := f.svc.ListByPassenger(ctx, p1)
	require.NoError(t, err)
	assert.Len(t, byPassenger, 2)

	byDriver, err := f.svc.ListByDriver(ctx, d1)
	require.NoError(t, err)
	require.Len(t, byDriver, 1)
	assert.Equal(t, second.ID, byDriver[0].ID)

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	active, err := f.svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	cancelled, err := f.svc.ListByStatus(ctx, model.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)

	_, err = f.svc.ListByStatus(ctx, model.BookingStatus("Lost"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	count, err := f.svc.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	history, err := f.svc.History(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.BookingStatusPending, history[0].NewStatus)
	assert.Equal(t, model.BookingStatusConfirmed, history[1].NewStatus)
}

func TestListForPrincipal(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	p1 := f.passengers.add("Asha")
	p2 := f.passengers.add("Ben")
	mine := f.create(t, p1, nil)
	f.create(t, p2, nil)

	list, err := f.svc.ListFor(ctx, model.Principal{Role: model.UserRolePassenger, ProfileID: &p1}, ListBookingsOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	list, err = f.svc.ListFor(ctx, model.Principal{Role: model.UserRoleAdmin}, ListBookingsOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.svc.ListFor(ctx, model.Principal{Role: model.UserRoleDriver}, ListBookingsOptions{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	assert.True(t, CanAccess(model.Principal{Role: model.UserRolePassenger, ProfileID: &p1}, mine))
	assert.False(t, CanAccess(model.Principal{Role: model.UserRolePassenger, ProfileID: &p2}, mine))
}

func TestStoreFailuresAreUnavailable(t *testing.T) {
	f := newBookingFixture(t)
	f.bookings.err = errors.New("dial tcp: connection refused")

	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, KindUnavailable, KindOf(err))

	result := Outcome(nil, "", err)
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Message)
}

func TestEndToEndRide(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	passenger := f.passengers.add("P")
	d1 := f.drivers.add("D1", model.AvailabilityAvailable)

	booking, err := f.svc.Create(ctx, CreateBookingInput{
		PassengerID:    passenger,
		PickupLocation: "Home",
		Destination:    "Office",
		DistanceKm:     km(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 200.0, *booking.Fare)
	assert.Equal(t, model.BookingStatusPending, booking.Status)

	assigned, err := f.svc.AssignDriver(ctx, booking.ID, d1)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, assigned.Booking.Status)
	assert.Equal(t, model.AvailabilityBusy, f.drivers.availability(d1))

	_, err = f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusInProgress)
	require.NoError(t, err)
	done, err := f.svc.UpdateStatus(ctx, booking.ID, model.BookingStatusCompleted)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	revenue, err := f.svc.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200.0, revenue)

	assert.Equal(t, []model.BookingStatus{
		model.BookingStatusConfirmed,
		model.BookingStatusInProgress,
		model.BookingStatusCompleted,
	}, f.recorder.transitions)
}

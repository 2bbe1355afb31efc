package service

import (
	"context"

	"taxi-booking-service/internal/model"
)

type StatsService struct {
	passengers PassengerStore
	drivers    DriverStore
	vehicles   VehicleStore
	bookings   BookingStore
	payments   PaymentStore
	cache      StatsCache
}

func NewStatsService(
	passengers PassengerStore,
	drivers DriverStore,
	vehicles VehicleStore,
	bookings BookingStore,
	payments PaymentStore,
	cache StatsCache,
) *StatsService {
	return &StatsService{
		passengers: passengers,
		drivers:    drivers,
		vehicles:   vehicles,
		bookings:   bookings,
		payments:   payments,
		cache:      cache,
	}
}

// Dashboard returns the cached stats when present, otherwise recomputes them.
// Booking and payment writes drop the cache; passenger, driver and vehicle
// counts may lag by up to the cache TTL.
func (s *StatsService) Dashboard(ctx context.Context, refresh bool) (*model.DashboardStats, error) {
	if refresh {
		s.cache.Invalidate(ctx)
	} else if stats, ok := s.cache.Get(ctx); ok {
		return stats, nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, stats)
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context) (*model.DashboardStats, error) {
	var (
		stats model.DashboardStats
		err   error
	)

	if stats.TotalPassengers, err = s.passengers.Count(ctx); err != nil {
		return nil, storeErr("count passengers", err, "passenger")
	}
	if stats.TotalDrivers, err = s.drivers.Count(ctx, nil); err != nil {
		return nil, storeErr("count drivers", err, "driver")
	}
	available := model.AvailabilityAvailable
	if stats.AvailableDrivers, err = s.drivers.Count(ctx, &available); err != nil {
		return nil, storeErr("count drivers", err, "driver")
	}
	if stats.TotalVehicles, err = s.vehicles.Count(ctx); err != nil {
		return nil, storeErr("count vehicles", err, "vehicle")
	}
	if stats.TotalBookings, err = s.bookings.Count(ctx); err != nil {
		return nil, storeErr("count bookings", err, "booking")
	}
	if stats.BookingRevenue, err = s.bookings.SumCompletedFare(ctx); err != nil {
		return nil, storeErr("sum revenue", err, "booking")
	}
	if stats.PaymentRevenue, err = s.payments.SumCompleted(ctx); err != nil {
		return nil, storeErr("sum payments", err, "payment")
	}
	if stats.RevenueByMethod, err = s.payments.RevenueByMethod(ctx); err != nil {
		return nil, storeErr("sum payments by method", err, "payment")
	}

	stats.BookingRevenue = roundCents(stats.BookingRevenue)
	stats.PaymentRevenue = roundCents(stats.PaymentRevenue)
	return &stats, nil
}

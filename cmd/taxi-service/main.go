package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taxi-booking-service/internal/auth"
	"taxi-booking-service/internal/cache"
	"taxi-booking-service/internal/config"
	"taxi-booking-service/internal/db"
	httphandler "taxi-booking-service/internal/http"
	"taxi-booking-service/internal/http/middleware"
	"taxi-booking-service/internal/logger"
	"taxi-booking-service/internal/metrics"
	"taxi-booking-service/internal/repository"
	"taxi-booking-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	accountRepo := repository.NewAccountRepository(database)
	passengerRepo := repository.NewPassengerRepository(database)
	driverRepo := repository.NewDriverRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	bookingRepo := repository.NewBookingRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)

	var statsCache service.StatsCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, dashboard stats are not cached")
		} else {
			defer client.Close()
			statsCache = cache.NewRedisStatsCache(client, cfg.Redis.StatsTTL, log)
		}
	}

	recorder := metrics.NewMetrics(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	fares := service.NewFareCalculator(cfg.Fare.Base, cfg.Fare.PerKm)
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)

	passengerService := service.NewPassengerService(passengerRepo)
	driverService := service.NewDriverService(driverRepo, log)
	accountService := service.NewAccountService(accountRepo, passengerService, driverService, tokenParser, log)
	bookingService := service.NewBookingService(bookingRepo, driverRepo, passengerRepo, fares, recorder, log)
	bookingService.SetStatsCache(statsCache)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo)
	paymentService.SetStatsCache(statsCache)

	services := httphandler.Services{
		Bookings:   bookingService,
		Drivers:    driverService,
		Passengers: passengerService,
		Vehicles:   service.NewVehicleService(vehicleRepo, driverRepo),
		Payments:   paymentService,
		Accounts:   accountService,
		Stats:      service.NewStatsService(passengerRepo, driverRepo, vehicleRepo, bookingRepo, paymentRepo, statsCache),
		Fares:      fares,
	}

	if cfg.Auth.AdminPassword != "" {
		if err := accountService.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to provision admin account")
		}
	}

	handler := httphandler.NewHandler(services, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), httphandler.RouterOptions{
		Environment:    cfg.Environment,
		Instrument:     recorder.Middleware(),
		MetricsHandler: promhttp.Handler(),
		HealthCheck: func(ctx context.Context) error {
			return db.HealthCheck(ctx, database)
		},
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting taxi booking service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taxi-booking-service/internal/http/middleware"
	"taxi-booking-service/internal/model"
)

type RouterOptions struct {
	Environment string
	// Instrument wraps every request, usually with the Prometheus middleware.
	Instrument gin.HandlerFunc
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	// HealthCheck backs /healthz; nil reports healthy.
	HealthCheck func(ctx context.Context) error
}

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, opts RouterOptions) *gin.Engine {
	if opts.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))
	if opts.Instrument != nil {
		router.Use(opts.Instrument)
	}

	router.GET("/healthz", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	admin := middleware.RequireRole(model.UserRoleAdmin)

	public := router.Group("/api/v1")
	{
		public.POST("/auth/register/passenger", handler.registerPassenger)
		public.POST("/auth/register/driver", handler.registerDriver)
		public.POST("/auth/login", handler.login)
		public.GET("/fares/estimate", handler.estimateFare)
	}

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.PUT("/auth/password", handler.changePassword)
		protected.GET("/accounts", admin, handler.listAccounts)

		protected.GET("/bookings", handler.listBookings)
		protected.GET("/bookings/pending", handler.listBookingsWithStatus(model.BookingStatusPending))
		protected.GET("/bookings/active", handler.listBookingsWithStatus(model.ActiveBookingStatuses...))
		protected.GET("/bookings/completed", handler.listBookingsWithStatus(model.BookingStatusCompleted))
		protected.GET("/bookings/summary", admin, handler.bookingSummary)
		protected.GET("/bookings/:id", handler.getBooking)
		protected.GET("/bookings/:id/history", handler.bookingHistory)
		protected.GET("/bookings/:id/payment", handler.bookingPayment)
		protected.POST("/bookings", handler.createBooking)
		protected.PUT("/bookings/:id", handler.updateBooking)
		protected.PUT("/bookings/:id/driver", admin, handler.assignDriver)
		protected.PUT("/bookings/:id/status", handler.updateBookingStatus)
		protected.POST("/bookings/:id/cancel", handler.cancelBooking)
		protected.POST("/bookings/:id/complete", handler.completeBooking)
		protected.DELETE("/bookings/:id", admin, handler.deleteBooking)

		protected.GET("/passengers", admin, handler.listPassengers)
		protected.GET("/passengers/me", handler.currentPassenger)
		protected.GET("/passengers/:id", handler.getPassenger)
		protected.POST("/passengers", admin, handler.createPassenger)
		protected.PUT("/passengers/:id", handler.updatePassenger)
		protected.DELETE("/passengers/:id", admin, handler.deletePassenger)

		protected.GET("/drivers", handler.listDrivers)
		protected.GET("/drivers/available", handler.listAvailableDrivers)
		protected.GET("/drivers/me", handler.currentDriver)
		protected.GET("/drivers/:id", handler.getDriver)
		protected.GET("/drivers/:id/vehicle", handler.driverVehicle)
		protected.POST("/drivers", admin, handler.createDriver)
		protected.PUT("/drivers/:id", handler.updateDriver)
		protected.PUT("/drivers/:id/availability", handler.setDriverAvailability)
		protected.DELETE("/drivers/:id", admin, handler.deleteDriver)

		protected.GET("/vehicles", handler.listVehicles)
		protected.GET("/vehicles/:id", handler.getVehicle)
		protected.POST("/vehicles", admin, handler.createVehicle)
		protected.PUT("/vehicles/:id", admin, handler.updateVehicle)
		protected.PUT("/vehicles/:id/driver", admin, handler.assignVehicleDriver)
		protected.DELETE("/vehicles/:id/driver", admin, handler.unassignVehicleDriver)
		protected.DELETE("/vehicles/:id", admin, handler.deleteVehicle)

		protected.GET("/payments", admin, handler.listPayments)
		protected.GET("/payments/revenue", admin, handler.paymentRevenue)
		protected.GET("/payments/:id", handler.getPayment)
		protected.POST("/payments", handler.createPayment)
		protected.PUT("/payments/:id", admin, handler.updatePayment)
		protected.PUT("/payments/:id/status", admin, handler.updatePaymentStatus)
		protected.POST("/payments/:id/complete", admin, handler.completePayment)
		protected.POST("/payments/:id/fail", admin, handler.failPayment)
		protected.DELETE("/payments/:id", admin, handler.deletePayment)

		protected.GET("/stats/dashboard", admin, handler.dashboardStats)
	}

	return router
}

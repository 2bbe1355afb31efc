package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taxi-booking-service/internal/http/middleware"
	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/service"
)

type Services struct {
	Bookings   *service.BookingService
	Drivers    *service.DriverService
	Passengers *service.PassengerService
	Vehicles   *service.VehicleService
	Payments   *service.PaymentService
	Accounts   *service.AccountService
	Stats      *service.StatsService
	Fares      service.FareCalculator
}

type Handler struct {
	bookings   *service.BookingService
	drivers    *service.DriverService
	passengers *service.PassengerService
	vehicles   *service.VehicleService
	payments   *service.PaymentService
	accounts   *service.AccountService
	stats      *service.StatsService
	fares      service.FareCalculator
	log        zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		bookings:   services.Bookings,
		drivers:    services.Drivers,
		passengers: services.Passengers,
		vehicles:   services.Vehicles,
		payments:   services.Payments,
		accounts:   services.Accounts,
		stats:      services.Stats,
		fares:      services.Fares,
		log:        log,
	}
}

func (h *Handler) estimateFare(c *gin.Context) {
	distance, err := strconv.ParseFloat(strings.TrimSpace(c.Query("distance_km")), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("distance_km must be a number"))
		return
	}
	estimate, err := h.fares.Estimate(distance)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("fare estimated", estimate))
}

func (h *Handler) dashboardStats(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	stats, err := h.stats.Dashboard(c.Request.Context(), refresh)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", stats))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindForbidden:
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case service.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case service.KindInvalid:
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case service.KindConflict:
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusServiceUnavailable, errorResponse("service temporarily unavailable"))
	}
}

func principalOrAbort(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
	}
	return principal, ok
}

func pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+label+" id"))
		return uuid.Nil, false
	}
	return id, true
}

func queryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func queryPage(c *gin.Context) (limit, offset int) {
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("limit"))); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("offset"))); err == nil {
		offset = v
	}
	return limit, offset
}

func parseUUIDBody(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func errUnknownValue(field, value string) error {
	return fmt.Errorf("unknown %s %q", field, value)
}

// parseOptionalEnum returns nil for an empty value and an error for an
// unrecognised one.
func parseOptionalEnum[T ~string](field, raw string, parse func(string) (T, bool)) (*T, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, ok := parse(raw)
	if !ok {
		return nil, errUnknownValue(field, raw)
	}
	return &value, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func successResponse(message string, data interface{}) service.Result {
	return service.Result{OK: true, Message: message, Value: data}
}

func errorResponse(msg string) service.Result {
	return service.Result{OK: false, Message: msg}
}

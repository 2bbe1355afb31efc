package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/service"
)

func (h *Handler) listBookings(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	opts, err := parseBookingQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	bookings, err := h.bookings.ListFor(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"items": bookings}))
}

func (h *Handler) listBookingsWithStatus(statuses ...model.BookingStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalOrAbort(c)
		if !ok {
			return
		}
		limit, offset := queryPage(c)
		bookings, err := h.bookings.ListFor(c.Request.Context(), principal, service.ListBookingsOptions{
			Statuses: statuses,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse("", gin.H{"items": bookings}))
	}
}

func (h *Handler) bookingSummary(c *gin.Context) {
	ctx := c.Request.Context()
	count, err := h.bookings.Count(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}
	revenue, err := h.bookings.TotalRevenue(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"total_bookings": count, "total_revenue": revenue}))
}

func (h *Handler) getBooking(c *gin.Context) {
	booking, ok := h.accessibleBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, successResponse("", booking))
}

func (h *Handler) bookingHistory(c *gin.Context) {
	booking, ok := h.accessibleBooking(c)
	if !ok {
		return
	}
	history, err := h.bookings.History(c.Request.Context(), booking.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"items": history}))
}

func (h *Handler) createBooking(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req struct {
		PassengerID    string   `json:"passenger_id"`
		PickupLocation string   `json:"pickup_location" binding:"required"`
		Destination    string   `json:"destination" binding:"required"`
		DistanceKm     *float64 `json:"distance_km"`
		DriverID       string   `json:"driver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driverID, err := parseUUIDBody(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}

	var passengerID uuid.UUID
	switch {
	case principal.IsPassenger() && principal.ProfileID != nil:
		passengerID = *principal.ProfileID
		// passengers book for themselves and cannot pick a driver
		driverID = nil
	case principal.IsAdmin():
		id, err := uuid.Parse(req.PassengerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid passenger_id"))
			return
		}
		passengerID = id
	default:
		h.handleError(c, service.ErrPermissionDenied)
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), service.CreateBookingInput{
		PassengerID:    passengerID,
		PickupLocation: req.PickupLocation,
		Destination:    req.Destination,
		DistanceKm:     req.DistanceKm,
		DriverID:       driverID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("booking created", booking))
}

func (h *Handler) updateBooking(c *gin.Context) {
	booking, ok := h.accessibleBooking(c)
	if !ok {
		return
	}
	principal, _ := principalOrAbort(c)

	var req struct {
		PassengerID    string   `json:"passenger_id"`
		DriverID       string   `json:"driver_id"`
		PickupLocation *string  `json:"pickup_location"`
		Destination    *string  `json:"destination"`
		Status         string   `json:"status"`
		DistanceKm     *float64 `json:"distance_km"`
		Fare           *float64 `json:"fare"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.UpdateBookingInput{
		PickupLocation: req.PickupLocation,
		Destination:    req.Destination,
		DistanceKm:     req.DistanceKm,
	}

	if principal.IsAdmin() {
		var err error
		if input.PassengerID, err = parseUUIDBody(req.PassengerID); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid passenger_id"))
			return
		}
		if input.DriverID, err = parseUUIDBody(req.DriverID); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
			return
		}
		input.Fare = req.Fare
		if req.Status != "" {
			status, ok := model.ParseBookingStatus(req.Status)
			if !ok {
				c.JSON(http.StatusBadRequest, errorResponse("unknown status"))
				return
			}
			input.Status = &status
		}
	} else if booking.Status != model.BookingStatusPending || !principal.IsPassenger() {
		h.handleError(c, service.ErrPermissionDenied)
		return
	}

	updated, err := h.bookings.Update(c.Request.Context(), booking.ID, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("booking updated", updated))
}

func (h *Handler) assignDriver(c *gin.Context) {
	id, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	var req struct {
		DriverID string `json:"driver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}

	result, err := h.bookings.AssignDriver(c.Request.Context(), id, driverID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	message := "driver assigned"
	if len(result.Warnings) > 0 {
		message = "driver assigned with warnings"
	}
	c.JSON(http.StatusOK, successResponse(message, result))
}

func (h *Handler) updateBookingStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	status, ok := model.ParseBookingStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse("unknown status"))
		return
	}
	h.transition(c, status)
}

func (h *Handler) cancelBooking(c *gin.Context) {
	h.transition(c, model.BookingStatusCancelled)
}

func (h *Handler) completeBooking(c *gin.Context) {
	h.transition(c, model.BookingStatusCompleted)
}

// transition applies a status change after checking the caller's role:
// passengers may only cancel, drivers drive their own bookings forward.
func (h *Handler) transition(c *gin.Context, status model.BookingStatus) {
	booking, ok := h.accessibleBooking(c)
	if !ok {
		return
	}
	principal, _ := principalOrAbort(c)
	if principal.IsPassenger() && status != model.BookingStatusCancelled {
		h.handleError(c, service.ErrPermissionDenied)
		return
	}

	updated, err := h.bookings.UpdateStatus(c.Request.Context(), booking.ID, status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("booking "+string(updated.Status), updated))
}

func (h *Handler) deleteBooking(c *gin.Context) {
	id, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("booking deleted", nil))
}

// accessibleBooking loads the booking named in the path and checks the
// caller may see it.
func (h *Handler) accessibleBooking(c *gin.Context) (*model.Booking, bool) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return nil, false
	}
	id, ok := pathID(c, "id", "booking")
	if !ok {
		return nil, false
	}
	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return nil, false
	}
	if !service.CanAccess(principal, booking) {
		h.handleError(c, service.ErrPermissionDenied)
		return nil, false
	}
	return booking, true
}

func parseBookingQuery(c *gin.Context) (service.ListBookingsOptions, error) {
	var opts service.ListBookingsOptions
	var err error

	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			status, ok := model.ParseBookingStatus(val)
			if !ok {
				return opts, errUnknownValue("status", val)
			}
			opts.Statuses = append(opts.Statuses, status)
		}
	}
	if opts.PassengerID, err = queryUUID(c, "passenger_id"); err != nil {
		return opts, err
	}
	if opts.DriverID, err = queryUUID(c, "driver_id"); err != nil {
		return opts, err
	}
	if opts.DateFrom, err = queryTime(c, "date_from"); err != nil {
		return opts, err
	}
	if opts.DateTo, err = queryTime(c, "date_to"); err != nil {
		return opts, err
	}
	opts.Limit, opts.Offset = queryPage(c)
	opts.Search = c.Query("search")

	return opts, nil
}

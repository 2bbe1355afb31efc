package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/service"
)

func (h *Handler) listPayments(c *gin.Context) {
	status, err := parseOptionalEnum("payment status", c.Query("status"), model.ParsePaymentStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	method, err := parseOptionalEnum("payment method", c.Query("method"), model.ParsePaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	opts := service.ListPaymentsOptions{Status: status, Method: method}
	if opts.DateFrom, err = queryTime(c, "date_from"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid date_from"))
		return
	}
	if opts.DateTo, err = queryTime(c, "date_to"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid date_to"))
		return
	}
	opts.Limit, opts.Offset = queryPage(c)

	payments, err := h.payments.List(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"items": payments}))
}

func (h *Handler) paymentRevenue(c *gin.Context) {
	ctx := c.Request.Context()
	total, err := h.payments.TotalRevenue(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}
	byMethod, err := h.payments.RevenueByMethod(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"total": total, "by_method": byMethod}))
}

func (h *Handler) getPayment(c *gin.Context) {
	payment, ok := h.accessiblePayment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, successResponse("", payment))
}

func (h *Handler) bookingPayment(c *gin.Context) {
	booking, ok := h.accessibleBooking(c)
	if !ok {
		return
	}
	payment, err := h.payments.GetByBooking(c.Request.Context(), booking.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", payment))
}

func (h *Handler) createPayment(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req struct {
		BookingID string   `json:"booking_id" binding:"required"`
		Amount    *float64 `json:"amount"`
		Method    string   `json:"payment_method"`
		Status    string   `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid booking_id"))
		return
	}
	method, err := parseOptionalEnum("payment method", req.Method, model.ParsePaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	status, err := parseOptionalEnum("payment status", req.Status, model.ParsePaymentStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if !principal.IsAdmin() {
		booking, err := h.bookings.Get(c.Request.Context(), bookingID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		// passengers pay for their own bookings at the booking fare
		if !principal.IsPassenger() || !principal.Owns(booking.PassengerID) {
			h.handleError(c, service.ErrPermissionDenied)
			return
		}
		req.Amount = nil
		status = nil
	}

	input := service.CreatePaymentInput{BookingID: bookingID, Amount: req.Amount}
	if method != nil {
		input.Method = *method
	}
	if status != nil {
		input.Status = *status
	}

	payment, err := h.payments.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("payment recorded", payment))
}

func (h *Handler) updatePayment(c *gin.Context) {
	id, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}

	var req struct {
		Amount *float64 `json:"amount"`
		Method string   `json:"payment_method"`
		Status string   `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	method, err := parseOptionalEnum("payment method", req.Method, model.ParsePaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	status, err := parseOptionalEnum("payment status", req.Status, model.ParsePaymentStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	payment, err := h.payments.Update(c.Request.Context(), id, service.UpdatePaymentInput{
		Amount: req.Amount,
		Method: method,
		Status: status,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("payment updated", payment))
}

func (h *Handler) updatePaymentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"payment_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	status, ok := model.ParsePaymentStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse(errUnknownValue("payment status", req.Status).Error()))
		return
	}
	h.setPaymentStatus(c, status)
}

func (h *Handler) completePayment(c *gin.Context) {
	h.setPaymentStatus(c, model.PaymentStatusCompleted)
}

func (h *Handler) failPayment(c *gin.Context) {
	h.setPaymentStatus(c, model.PaymentStatusFailed)
}

func (h *Handler) setPaymentStatus(c *gin.Context, status model.PaymentStatus) {
	id, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}
	payment, err := h.payments.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("payment "+string(payment.Status), payment))
}

func (h *Handler) deletePayment(c *gin.Context) {
	id, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}
	if err := h.payments.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("payment deleted", nil))
}

// accessiblePayment loads the payment and checks the caller can see the
// booking it belongs to.
func (h *Handler) accessiblePayment(c *gin.Context) (*model.Payment, bool) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return nil, false
	}
	id, ok := pathID(c, "id", "payment")
	if !ok {
		return nil, false
	}
	payment, err := h.payments.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return nil, false
	}
	if principal.IsAdmin() {
		return payment, true
	}
	booking, err := h.bookings.Get(c.Request.Context(), payment.BookingID)
	if err != nil {
		h.handleError(c, err)
		return nil, false
	}
	if !service.CanAccess(principal, booking) {
		h.handleError(c, service.ErrPermissionDenied)
		return nil, false
	}
	return payment, true
}

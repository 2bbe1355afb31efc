package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxi-booking-service/internal/service"
)

func (h *Handler) listPassengers(c *gin.Context) {
	limit, offset := queryPage(c)
	passengers, err := h.passengers.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"items": passengers}))
}

func (h *Handler) currentPassenger(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	passenger, err := h.passengers.GetByAccount(c.Request.Context(), principal.AccountID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", passenger))
}

func (h *Handler) getPassenger(c *gin.Context) {
	id, ok := h.passengerSelfOrAdmin(c)
	if !ok {
		return
	}
	passenger, err := h.passengers.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", passenger))
}

func (h *Handler) createPassenger(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required"`
		Phone   string `json:"phone" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	passenger, err := h.passengers.Create(c.Request.Context(), service.PassengerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("passenger created", passenger))
}

func (h *Handler) updatePassenger(c *gin.Context) {
	id, ok := h.passengerSelfOrAdmin(c)
	if !ok {
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	passenger, err := h.passengers.Update(c.Request.Context(), id, service.UpdatePassengerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("passenger updated", passenger))
}

func (h *Handler) deletePassenger(c *gin.Context) {
	id, ok := pathID(c, "id", "passenger")
	if !ok {
		return
	}
	if err := h.passengers.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("passenger deleted", nil))
}

func (h *Handler) passengerSelfOrAdmin(c *gin.Context) (uuid.UUID, bool) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := pathID(c, "id", "passenger")
	if !ok {
		return uuid.Nil, false
	}
	if !principal.IsAdmin() && !(principal.IsPassenger() && principal.Owns(id)) {
		h.handleError(c, service.ErrPermissionDenied)
		return uuid.Nil, false
	}
	return id, true
}

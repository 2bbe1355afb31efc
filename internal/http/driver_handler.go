package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/service"
)

type driverRequest struct {
	Name          string `json:"name" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Email         string `json:"email"`
	Availability  string `json:"availability"`
}

func (r driverRequest) input() (service.DriverInput, error) {
	availability, err := parseOptionalEnum("availability", r.Availability, model.ParseAvailability)
	if err != nil {
		return service.DriverInput{}, err
	}
	input := service.DriverInput{
		Name:          r.Name,
		LicenseNumber: r.LicenseNumber,
		Phone:         r.Phone,
		Email:         r.Email,
	}
	if availability != nil {
		input.Availability = *availability
	}
	return input, nil
}

func (h *Handler) listDrivers(c *gin.Context) {
	availability, err := parseOptionalEnum("availability", c.Query("availability"), model.ParseAvailability)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	limit, offset := queryPage(c)

	drivers, err := h.drivers.List(c.Request.Context(), service.ListDriversOptions{
		Availability: availability,
		Search:       c.Query("search"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"items": drivers}))
}

func (h *Handler) listAvailableDrivers(c *gin.Context) {
	drivers, err := h.drivers.ListAvailable(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"items": drivers}))
}

func (h *Handler) currentDriver(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	driver, err := h.drivers.GetByAccount(c.Request.Context(), principal.AccountID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", driver))
}

func (h *Handler) getDriver(c *gin.Context) {
	id, ok := pathID(c, "id", "driver")
	if !ok {
		return
	}
	driver, err := h.drivers.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", driver))
}

func (h *Handler) driverVehicle(c *gin.Context) {
	id, ok := pathID(c, "id", "driver")
	if !ok {
		return
	}
	vehicle, err := h.vehicles.GetByDriver(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", vehicle))
}

func (h *Handler) createDriver(c *gin.Context) {
	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	input, err := req.input()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.drivers.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("driver created", driver))
}

func (h *Handler) updateDriver(c *gin.Context) {
	id, ok := h.driverSelfOrAdmin(c)
	if !ok {
		return
	}

	var req struct {
		Name          *string `json:"name"`
		LicenseNumber *string `json:"license_number"`
		Phone         *string `json:"phone"`
		Email         *string `json:"email"`
		Availability  string  `json:"availability"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	availability, err := parseOptionalEnum("availability", req.Availability, model.ParseAvailability)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.drivers.Update(c.Request.Context(), id, service.UpdateDriverInput{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		Phone:         req.Phone,
		Email:         req.Email,
		Availability:  availability,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("driver updated", driver))
}

func (h *Handler) setDriverAvailability(c *gin.Context) {
	id, ok := h.driverSelfOrAdmin(c)
	if !ok {
		return
	}

	var req struct {
		Availability string `json:"availability" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	availability, ok := model.ParseAvailability(req.Availability)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse(errUnknownValue("availability", req.Availability).Error()))
		return
	}

	if err := h.drivers.SetAvailability(c.Request.Context(), id, availability); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("availability updated", gin.H{"id": id, "availability": availability}))
}

func (h *Handler) deleteDriver(c *gin.Context) {
	id, ok := pathID(c, "id", "driver")
	if !ok {
		return
	}
	if err := h.drivers.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("driver deleted", nil))
}

// driverSelfOrAdmin resolves the path driver id, allowing admins and the
// driver themselves.
func (h *Handler) driverSelfOrAdmin(c *gin.Context) (uuid.UUID, bool) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := pathID(c, "id", "driver")
	if !ok {
		return uuid.Nil, false
	}
	if !principal.IsAdmin() && !(principal.IsDriver() && principal.Owns(id)) {
		h.handleError(c, service.ErrPermissionDenied)
		return uuid.Nil, false
	}
	return id, true
}

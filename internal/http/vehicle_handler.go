package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/service"
)

func (h *Handler) listVehicles(c *gin.Context) {
	vehicleType, err := parseOptionalEnum("vehicle type", c.Query("type"), model.ParseVehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	opts := service.ListVehiclesOptions{Type: vehicleType, Search: c.Query("search")}
	if raw := strings.TrimSpace(c.Query("assigned")); raw != "" {
		assigned, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("assigned must be true or false"))
			return
		}
		opts.Assigned = &assigned
	}
	opts.Limit, opts.Offset = queryPage(c)

	vehicles, err := h.vehicles.List(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"items": vehicles}))
}

func (h *Handler) getVehicle(c *gin.Context) {
	id, ok := pathID(c, "id", "vehicle")
	if !ok {
		return
	}
	vehicle, err := h.vehicles.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", vehicle))
}

func (h *Handler) createVehicle(c *gin.Context) {
	var req struct {
		Model        string `json:"model" binding:"required"`
		LicensePlate string `json:"license_plate" binding:"required"`
		VehicleType  string `json:"vehicle_type"`
		Color        string `json:"color"`
		Year         *int   `json:"year"`
		DriverID     string `json:"driver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	vehicleType, err := parseOptionalEnum("vehicle type", req.VehicleType, model.ParseVehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	driverID, err := parseUUIDBody(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}

	input := service.VehicleInput{
		Model:        req.Model,
		LicensePlate: req.LicensePlate,
		Color:        req.Color,
		Year:         req.Year,
		DriverID:     driverID,
	}
	if vehicleType != nil {
		input.VehicleType = *vehicleType
	}

	vehicle, err := h.vehicles.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("vehicle created", vehicle))
}

func (h *Handler) updateVehicle(c *gin.Context) {
	id, ok := pathID(c, "id", "vehicle")
	if !ok {
		return
	}

	var req struct {
		Model          *string `json:"model"`
		LicensePlate   *string `json:"license_plate"`
		VehicleType    string  `json:"vehicle_type"`
		Color          *string `json:"color"`
		Year           *int    `json:"year"`
		DriverID       string  `json:"driver_id"`
		UnassignDriver bool    `json:"unassign_driver"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	vehicleType, err := parseOptionalEnum("vehicle type", req.VehicleType, model.ParseVehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	driverID, err := parseUUIDBody(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}

	vehicle, err := h.vehicles.Update(c.Request.Context(), id, service.UpdateVehicleInput{
		Model:          req.Model,
		LicensePlate:   req.LicensePlate,
		VehicleType:    vehicleType,
		Color:          req.Color,
		Year:           req.Year,
		DriverID:       driverID,
		UnassignDriver: req.UnassignDriver,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("vehicle updated", vehicle))
}

func (h *Handler) assignVehicleDriver(c *gin.Context) {
	id, ok := pathID(c, "id", "vehicle")
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
	driverID, err := uuid.Parse(strings.TrimSpace(req.DriverID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}

	vehicle, err := h.vehicles.AssignDriver(c.Request.Context(), id, driverID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("driver assigned to vehicle", vehicle))
}

func (h *Handler) unassignVehicleDriver(c *gin.Context) {
	id, ok := pathID(c, "id", "vehicle")
	if !ok {
		return
	}
	vehicle, err := h.vehicles.UnassignDriver(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("driver removed from vehicle", vehicle))
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	id, ok := pathID(c, "id", "vehicle")
	if !ok {
		return
	}
	if err := h.vehicles.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("vehicle deleted", nil))
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/service"
)

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) registerPassenger(c *gin.Context) {
	var req struct {
		credentials
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required"`
		Phone   string `json:"phone" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	passenger, err := h.accounts.RegisterPassenger(c.Request.Context(), service.RegisterPassengerInput{
		Username: req.Username,
		Password: req.Password,
		Profile: service.PassengerInput{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		},
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("passenger registered", passenger))
}

func (h *Handler) registerDriver(c *gin.Context) {
	var req struct {
		credentials
		driverRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	profile, err := req.driverRequest.input()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.accounts.RegisterDriver(c.Request.Context(), service.RegisterDriverInput{
		Username: req.Username,
		Password: req.Password,
		Profile:  profile,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("driver registered", driver))
}

func (h *Handler) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	session, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("login successful", session))
}

func (h *Handler) changePassword(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if err := h.accounts.ChangePassword(c.Request.Context(), principal.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("password changed", nil))
}

func (h *Handler) listAccounts(c *gin.Context) {
	role, err := parseOptionalEnum("role", c.Query("role"), model.ParseUserRole)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	accounts, err := h.accounts.List(c.Request.Context(), role)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("", gin.H{"items": accounts}))
}

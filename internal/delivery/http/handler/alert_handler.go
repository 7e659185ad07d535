package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vehicle-alert/internal/middleware"
	"vehicle-alert/internal/usecase/alertsvc"
	"vehicle-alert/pkg/utils"
)

type AlertHandler struct {
	service *alertsvc.Service
}

func NewAlertHandler(service *alertsvc.Service) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) RegisterRoutes(router *gin.RouterGroup) {
	alerts := router.Group("/alerts")
	{
		alerts.POST("", h.CreateAlert)
		alerts.GET("", h.ListMyAlerts)
		alerts.GET("/:id", h.GetAlert)
		alerts.POST("/:id/acknowledge", h.Acknowledge)
		alerts.POST("/:id/resolve", h.Resolve)
		alerts.POST("/:id/flag", h.Flag)
	}
}

func (h *AlertHandler) CreateAlert(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req alertsvc.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateAlert(c.Request.Context(), deviceID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AlertHandler) ListMyAlerts(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.service.ListMyAlerts(c.Request.Context(), deviceID, limit, offset)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) GetAlert(c *gin.Context) {
	deviceID, alertID, ok := h.ids(c)
	if !ok {
		return
	}

	resp, err := h.service.GetAlert(c.Request.Context(), deviceID, alertID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	deviceID, alertID, ok := h.ids(c)
	if !ok {
		return
	}

	resp, err := h.service.Acknowledge(c.Request.Context(), deviceID, alertID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) Resolve(c *gin.Context) {
	deviceID, alertID, ok := h.ids(c)
	if !ok {
		return
	}

	resp, err := h.service.Resolve(c.Request.Context(), deviceID, alertID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) Flag(c *gin.Context) {
	deviceID, alertID, ok := h.ids(c)
	if !ok {
		return
	}

	var req alertsvc.FlagAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Flag(c.Request.Context(), deviceID, alertID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) ids(c *gin.Context) (deviceID, alertID uuid.UUID, ok bool) {
	deviceID, ok = middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid alert ID")
		return uuid.Nil, uuid.Nil, false
	}
	return deviceID, alertID, true
}

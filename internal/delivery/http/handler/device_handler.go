package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-alert/internal/middleware"
	"vehicle-alert/internal/usecase/registry"
	"vehicle-alert/pkg/utils"
)

type DeviceHandler struct {
	service *registry.Service
}

func NewDeviceHandler(service *registry.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// RegisterPublicRoutes mounts the unauthenticated registration endpoint.
func (h *DeviceHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.RegisterDevice)
	}
}

// RegisterRoutes mounts the authenticated device endpoints.
func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.GET("/me", h.GetDevice)
		auth.PATCH("/me", h.UpdateDevice)
		auth.DELETE("/me", h.DeleteDevice)
	}
}

func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var req registry.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.RegisterDevice(c.Request.Context(), &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DeviceHandler) GetDevice(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	resp, err := h.service.GetDevice(c.Request.Context(), deviceID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req registry.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateDevice(c.Request.Context(), deviceID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.DeleteDevice(c.Request.Context(), deviceID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

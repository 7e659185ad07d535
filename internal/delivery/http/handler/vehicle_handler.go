package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vehicle-alert/internal/middleware"
	"vehicle-alert/internal/usecase/registry"
	"vehicle-alert/pkg/utils"
)

type VehicleHandler struct {
	service *registry.Service
}

func NewVehicleHandler(service *registry.Service) *VehicleHandler {
	return &VehicleHandler{service: service}
}

func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	vehicles := router.Group("/vehicles")
	{
		vehicles.POST("", h.RegisterVehicle)
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.PATCH("/:id", h.UpdateVehicle)
		vehicles.GET("/:id/qr", h.GetVehicleQR)
		vehicles.DELETE("/:id", h.DeleteVehicle)
	}
}

func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req registry.RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.RegisterVehicle(c.Request.Context(), deviceID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	resp, err := h.service.ListVehicles(c.Request.Context(), deviceID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	deviceID, vehicleID, ok := h.ids(c)
	if !ok {
		return
	}

	resp, err := h.service.GetVehicle(c.Request.Context(), deviceID, vehicleID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	deviceID, vehicleID, ok := h.ids(c)
	if !ok {
		return
	}

	var req registry.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateVehicle(c.Request.Context(), deviceID, vehicleID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *VehicleHandler) GetVehicleQR(c *gin.Context) {
	deviceID, vehicleID, ok := h.ids(c)
	if !ok {
		return
	}

	resp, err := h.service.VehicleQR(c.Request.Context(), deviceID, vehicleID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	deviceID, vehicleID, ok := h.ids(c)
	if !ok {
		return
	}

	if err := h.service.DeleteVehicle(c.Request.Context(), deviceID, vehicleID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *VehicleHandler) ids(c *gin.Context) (deviceID, vehicleID uuid.UUID, ok bool) {
	deviceID, ok = middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return uuid.Nil, uuid.Nil, false
	}
	return deviceID, vehicleID, true
}

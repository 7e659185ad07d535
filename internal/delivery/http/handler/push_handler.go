package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-alert/internal/middleware"
	"vehicle-alert/internal/usecase/pushsvc"
	"vehicle-alert/pkg/utils"
)

type PushHandler struct {
	service *pushsvc.Service
}

func NewPushHandler(service *pushsvc.Service) *PushHandler {
	return &PushHandler{service: service}
}

func (h *PushHandler) RegisterRoutes(router *gin.RouterGroup) {
	push := router.Group("/push")
	{
		push.POST("/token", h.RegisterToken)
		push.DELETE("/token", h.DeleteToken)
	}
}

func (h *PushHandler) RegisterToken(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req pushsvc.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.RegisterToken(c.Request.Context(), deviceID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PushHandler) DeleteToken(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	token := c.Query("token")
	if token == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Token query parameter required")
		return
	}

	if err := h.service.DeleteToken(c.Request.Context(), deviceID, token); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

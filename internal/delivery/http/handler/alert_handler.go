package handler

import (
	"errors"
	"net/http"
	"strconv"

	domainAlert "fleet-telemetry/internal/domain/alert"
	"fleet-telemetry/internal/usecase/alert"
	"fleet-telemetry/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AlertHandler struct {
	service *alert.Service
}

func NewAlertHandler(service *alert.Service) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) RegisterRoutes(router *gin.RouterGroup) {
	alerts := router.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.GET("/stats", h.GetCounts)
		alerts.GET("/unread-count", h.GetUnreadCount)
		alerts.POST("/:id/read", h.MarkRead)
		alerts.POST("/read-all", h.MarkAllRead)
	}
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.service.ListRecent(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Alerts retrieved successfully", resp)
}

func (h *AlertHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, domainAlert.ErrAlertNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Alert marked as read", nil)
}

func (h *AlertHandler) MarkAllRead(c *gin.Context) {
	count, err := h.service.MarkAllRead(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "All alerts marked as read", gin.H{"count": count})
}

func (h *AlertHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.service.CountUnread(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Unread count retrieved", gin.H{"count": count})
}

func (h *AlertHandler) GetCounts(c *gin.Context) {
	counts, err := h.service.Counts(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Alert counts retrieved", counts)
}

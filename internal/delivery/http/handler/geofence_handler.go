package handler

import (
	"errors"
	"net/http"

	domainGeofence "fleet-telemetry/internal/domain/geofence"
	"fleet-telemetry/internal/usecase/geofence"
	"fleet-telemetry/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GeofenceHandler struct {
	service *geofence.Service
}

func NewGeofenceHandler(service *geofence.Service) *GeofenceHandler {
	return &GeofenceHandler{service: service}
}

func (h *GeofenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	geofences := router.Group("/geofences")
	{
		geofences.POST("", h.CreateGeofence)
		geofences.GET("", h.ListGeofences)
		geofences.GET("/:id", h.GetGeofence)
		geofences.PUT("/:id", h.UpdateGeofence)
		geofences.DELETE("/:id", h.DeleteGeofence)
	}
}

func (h *GeofenceHandler) CreateGeofence(c *gin.Context) {
	var req geofence.CreateGeofenceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateGeofence(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domainGeofence.ErrInvalidGeometry) {
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Geofence created successfully", resp)
}

func (h *GeofenceHandler) GetGeofence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid geofence ID")
		return
	}

	resp, err := h.service.GetGeofence(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofence retrieved successfully", resp)
}

func (h *GeofenceHandler) ListGeofences(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	resp, err := h.service.ListGeofences(c.Request.Context(), activeOnly)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofences retrieved successfully", resp)
}

func (h *GeofenceHandler) UpdateGeofence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid geofence ID")
		return
	}

	var req geofence.UpdateGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateGeofence(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domainGeofence.ErrGeofenceNotFound):
			utils.ErrorResponse(c, http.StatusNotFound, err.Error())
		case errors.Is(err, domainGeofence.ErrInvalidGeometry):
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		default:
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofence updated successfully", resp)
}

func (h *GeofenceHandler) DeleteGeofence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid geofence ID")
		return
	}

	if err := h.service.DeleteGeofence(c.Request.Context(), id); err != nil {
		if errors.Is(err, domainGeofence.ErrGeofenceNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofence deleted successfully", nil)
}

package handler

import (
	"errors"
	"net/http"
	"time"

	domainPosition "fleet-telemetry/internal/domain/position"
	"fleet-telemetry/internal/ingestion"
	"fleet-telemetry/internal/usecase/telemetry"
	"fleet-telemetry/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SocketIDHeader carries the websocket connection id of the submitting
// client so its own events are not echoed back.
const SocketIDHeader = "X-Socket-ID"

type PositionHandler struct {
	processor *ingestion.Processor
	service   *telemetry.Service
}

func NewPositionHandler(processor *ingestion.Processor, service *telemetry.Service) *PositionHandler {
	return &PositionHandler{
		processor: processor,
		service:   service,
	}
}

func (h *PositionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/positions", h.SubmitPosition)

	devices := router.Group("/devices")
	{
		devices.GET("/:id/positions/last", h.GetLastPosition)
		devices.GET("/:id/positions", h.GetHistory)
	}

	router.GET("/stats", h.GetFleetStats)
	router.GET("/stats/ingestion", h.GetIngestionMetrics)
}

// SubmitPosition accepts one reading over REST and queues it for
// asynchronous processing. 202 means queued, not persisted.
func (h *PositionHandler) SubmitPosition(c *gin.Context) {
	var reading ingestion.RawReading

	if err := c.ShouldBindJSON(&reading); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ingestion.ValidateReading(&reading); err != nil {
		var validationErr *ingestion.ValidationError
		if errors.As(err, &validationErr) {
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, validationErr.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	reading.OriginSocketID = c.GetHeader(SocketIDHeader)
	h.processor.Submit(&reading)

	utils.SuccessResponse(c, http.StatusAccepted, "Position accepted", nil)
}

func (h *PositionHandler) GetLastPosition(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	last, err := h.service.LastPosition(c.Request.Context(), deviceID)
	if err != nil {
		if errors.Is(err, domainPosition.ErrPositionNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "No position recorded for device")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Last position retrieved", last)
}

func (h *PositionHandler) GetHistory(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	var query struct {
		From  string `form:"from"`
		To    string `form:"to"`
		Limit int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	var from, to time.Time
	if query.From != "" {
		from, err = time.Parse(time.RFC3339, query.From)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid from timestamp, expected RFC3339")
			return
		}
	}
	if query.To != "" {
		to, err = time.Parse(time.RFC3339, query.To)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid to timestamp, expected RFC3339")
			return
		}
	}

	history, err := h.service.History(c.Request.Context(), deviceID, from, to, query.Limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "History retrieved", history)
}

func (h *PositionHandler) GetFleetStats(c *gin.Context) {
	stats, err := h.service.FleetStats(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved", stats)
}

func (h *PositionHandler) GetIngestionMetrics(c *gin.Context) {
	metrics := h.processor.GetMetrics()
	utils.SuccessResponse(c, http.StatusOK, "Ingestion metrics retrieved", gin.H{
		"readings_received":       metrics.ReadingsReceived,
		"readings_processed":      metrics.ReadingsProcessed,
		"readings_failed":         metrics.ReadingsFailed,
		"readings_dropped":        metrics.ReadingsDropped,
		"alerts_generated":        metrics.AlertsGenerated,
		"buffer_size":             metrics.BufferSize,
		"last_processed_at":       metrics.LastProcessedAt,
		"average_processing_time": metrics.AverageProcessingTime.String(),
	})
}

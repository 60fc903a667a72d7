package routes

import (
	"net/http"

	"fleet-telemetry/internal/config"
	"fleet-telemetry/internal/delivery/http/handler"
	"fleet-telemetry/internal/infrastructure/database/postgres"
	"fleet-telemetry/internal/ingestion"
	"fleet-telemetry/internal/logger"
	"fleet-telemetry/internal/middleware"
	"fleet-telemetry/internal/realtime"
	"fleet-telemetry/internal/usecase/alert"
	"fleet-telemetry/internal/usecase/device"
	"fleet-telemetry/internal/usecase/geofence"
	"fleet-telemetry/internal/usecase/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Dependencies carries the already-constructed application components
// the router exposes over HTTP.
type Dependencies struct {
	Config    *config.Config
	DB        *postgres.DB
	Redis     *redis.Client
	Processor *ingestion.Processor
	Telemetry *telemetry.Service
	Devices   *device.Service
	Geofences *geofence.Service
	Alerts    *alert.Service
	Hub       *realtime.Hub
}

func SetupRoutes(deps *Dependencies) *gin.Engine {
	if deps.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Config.CORS))

	router.GET("/health", func(c *gin.Context) {
		if err := deps.DB.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}
		if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Redis connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	router.GET("/ws", func(c *gin.Context) {
		deps.Hub.ServeWS(c.Writer, c.Request)
	})

	positionHandler := handler.NewPositionHandler(deps.Processor, deps.Telemetry)
	deviceHandler := handler.NewDeviceHandler(deps.Devices)
	geofenceHandler := handler.NewGeofenceHandler(deps.Geofences)
	alertHandler := handler.NewAlertHandler(deps.Alerts)

	v1 := router.Group("/api/v1")
	{
		positionHandler.RegisterRoutes(v1)
		deviceHandler.RegisterRoutes(v1)
		geofenceHandler.RegisterRoutes(v1)
		alertHandler.RegisterRoutes(v1)
	}

	logger.Info("All routes initialized")
	return router
}

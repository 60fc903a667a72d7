package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-telemetry/internal/config"
	"fleet-telemetry/internal/events"
	"fleet-telemetry/internal/infrastructure/cache"
	"fleet-telemetry/internal/infrastructure/database/postgres"
	"fleet-telemetry/internal/ingestion"
	"fleet-telemetry/internal/logger"
	"fleet-telemetry/internal/realtime"
	"fleet-telemetry/internal/routes"
	alertUsecase "fleet-telemetry/internal/usecase/alert"
	deviceUsecase "fleet-telemetry/internal/usecase/device"
	geofenceUsecase "fleet-telemetry/internal/usecase/geofence"
	telemetryUsecase "fleet-telemetry/internal/usecase/telemetry"
	pkgmqtt "fleet-telemetry/pkg/mqtt"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.Redis.Addr == "" {
		logger.Fatal("Redis configuration is missing. Please set REDIS_ADDR environment variable.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}()

	// Repositories.
	positionRepo := postgres.NewPositionRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)
	geofenceRepo := postgres.NewGeofenceRepository(db)
	alertRepo := postgres.NewAlertRepository(db)

	// Shared infrastructure.
	positionCache := cache.NewRedisPositionCache(redisClient, cfg.Cache.LastPositionTTL)
	publisher := events.NewRedisPublisher(redisClient, cfg.Pipeline.PublishTimeout)

	// Ingestion side.
	engine := ingestion.NewRuleEngine(geofenceRepo, positionRepo, deviceRepo, alertRepo, publisher, logger.Logger)
	metrics := ingestion.NewMetricsTracker()
	pipeline := ingestion.NewPipeline(positionRepo, deviceRepo, positionCache, publisher, engine, metrics, logger.Logger)
	processor := ingestion.NewProcessor(pipeline, cfg.Pipeline.WorkerCount, cfg.Pipeline.BufferSize, metrics, logger.Logger)
	processor.Start()

	var mqttIngestion *ingestion.MQTTIngestionClient
	if cfg.MQTT.Broker != "" {
		mqttIngestion, err = ingestion.NewMQTTIngestionClient(&ingestion.MQTTIngestionConfig{
			ClientConfig: &pkgmqtt.Config{
				Broker:               cfg.MQTT.Broker,
				ClientID:             cfg.MQTT.ClientID,
				Username:             cfg.MQTT.Username,
				Password:             cfg.MQTT.Password,
				CleanSession:         false,
				KeepAlive:            30,
				ConnectTimeout:       10,
				AutoReconnect:        true,
				MaxReconnectInterval: time.Minute,
			},
			PositionsTopic: cfg.MQTT.PositionsTopic,
			QoS:            byte(cfg.MQTT.QoS),
		}, processor)
		if err != nil {
			logger.Fatal("Failed to build MQTT ingestion client", zap.Error(err))
		}
		if err := mqttIngestion.Start(); err != nil {
			logger.Fatal("Failed to start MQTT ingestion", zap.Error(err))
		}
	} else {
		logger.Warn("MQTT broker not configured, device uplink limited to REST")
	}

	// Live bridge.
	hub := realtime.NewHub(redisClient, logger.Logger)
	go hub.Run(ctx)

	// Read side.
	telemetryService := telemetryUsecase.NewService(positionRepo, deviceRepo, geofenceRepo, alertRepo, positionCache)
	deviceService := deviceUsecase.NewService(deviceRepo, publisher)
	geofenceService := geofenceUsecase.NewService(geofenceRepo)
	alertService := alertUsecase.NewService(alertRepo)

	router := routes.SetupRoutes(&routes.Dependencies{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Processor: processor,
		Telemetry: telemetryService,
		Devices:   deviceService,
		Geofences: geofenceService,
		Alerts:    alertService,
		Hub:       hub,
	})

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	// Stop accepting uplink first (MQTT, then HTTP), then drain the
	// queue, then stop the hub. Submits racing the HTTP shutdown are
	// dropped by the processor rather than lost mid-queue.
	if mqttIngestion != nil {
		mqttIngestion.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}

	processor.Stop()
	cancel()

	logger.Info("Server exited properly")
}

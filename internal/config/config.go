package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	Pipeline PipelineConfig
	Cache    CacheConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	PositionsTopic string
	QoS            int
}

type PipelineConfig struct {
	WorkerCount    int
	BufferSize     int
	PublishTimeout time.Duration
}

type CacheConfig struct {
	LastPositionTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("PIPELINE_WORKER_COUNT", 4)
	viper.SetDefault("PIPELINE_BUFFER_SIZE", 1024)
	viper.SetDefault("PIPELINE_PUBLISH_TIMEOUT_MS", 2000)
	viper.SetDefault("CACHE_LAST_POSITION_TTL_HOURS", 24)
	viper.SetDefault("MQTT_POSITIONS_TOPIC", "devices/+/positions")
	viper.SetDefault("MQTT_QOS", 1)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		MQTT: MQTTConfig{
			Broker:         viper.GetString("MQTT_BROKER"),
			ClientID:       viper.GetString("MQTT_CLIENT_ID"),
			Username:       viper.GetString("MQTT_USERNAME"),
			Password:       viper.GetString("MQTT_PASSWORD"),
			PositionsTopic: viper.GetString("MQTT_POSITIONS_TOPIC"),
			QoS:            viper.GetInt("MQTT_QOS"),
		},
		Pipeline: PipelineConfig{
			WorkerCount:    viper.GetInt("PIPELINE_WORKER_COUNT"),
			BufferSize:     viper.GetInt("PIPELINE_BUFFER_SIZE"),
			PublishTimeout: time.Duration(viper.GetInt("PIPELINE_PUBLISH_TIMEOUT_MS")) * time.Millisecond,
		},
		Cache: CacheConfig{
			LastPositionTTL: time.Duration(viper.GetInt("CACHE_LAST_POSITION_TTL_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

package ingestion

import (
	"errors"
	"fmt"
	"sync"

	"fleet-telemetry/internal/logger"
	pkgmqtt "fleet-telemetry/pkg/mqtt"

	"go.uber.org/zap"
)

// MQTTIngestionConfig describes the uplink topic and MQTT connection
// parameters.
type MQTTIngestionConfig struct {
	ClientConfig   *pkgmqtt.Config
	PositionsTopic string
	QoS            byte
}

// MQTTIngestionClient wires device uplink messages into the processor.
type MQTTIngestionClient struct {
	cfg       *MQTTIngestionConfig
	client    *pkgmqtt.Client
	processor *Processor

	mu            sync.Mutex
	started       bool
	subscriptions []string
}

// NewMQTTIngestionClient builds a new MQTT client for ingestion.
func NewMQTTIngestionClient(cfg *MQTTIngestionConfig, processor *Processor) (*MQTTIngestionClient, error) {
	if cfg == nil || cfg.ClientConfig == nil {
		return nil, errors.New("mqtt ingestion config is not configured")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	client := pkgmqtt.NewClient(cfg.ClientConfig)
	return &MQTTIngestionClient{
		cfg:       cfg,
		client:    client,
		processor: processor,
	}, nil
}

// Start establishes the MQTT connection and subscribes to the uplink
// topic.
func (c *MQTTIngestionClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if c.cfg.PositionsTopic == "" {
		return errors.New("no MQTT positions topic configured")
	}

	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	if err := c.client.Subscribe(c.cfg.PositionsTopic, c.cfg.QoS, c.handlePositionMessage); err != nil {
		c.client.Disconnect()
		return fmt.Errorf("subscribe failed for topic %s: %w", c.cfg.PositionsTopic, err)
	}
	c.subscriptions = append(c.subscriptions, c.cfg.PositionsTopic)
	logger.Info("listening for device uplink", zap.String("topic", c.cfg.PositionsTopic))

	c.started = true
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (c *MQTTIngestionClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	if len(c.subscriptions) > 0 {
		if err := c.client.Unsubscribe(c.subscriptions...); err != nil {
			logger.Warn("failed to unsubscribe from MQTT topics", zap.Error(err))
		}
	}

	c.client.Disconnect()
	c.started = false
	c.subscriptions = nil
}

// handlePositionMessage decodes a reading and hands it to the
// processor. Malformed payloads are dropped here; field validation
// happens inside the pipeline.
func (c *MQTTIngestionClient) handlePositionMessage(topic string, payload []byte) {
	reading, err := ParseReading(payload)
	if err != nil {
		logger.Warn("invalid uplink payload",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	c.processor.Submit(reading)
}

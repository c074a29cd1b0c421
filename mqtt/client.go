package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"citrus-link/config"
	"citrus-link/models"
	"citrus-link/services"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Topic layout: citrus/v1/<robotId>/telemetry and citrus/v1/<robotId>/log.
const (
	telemetryTopic = "citrus/v1/+/telemetry"
	logTopic       = "citrus/v1/+/log"
)

// Client wraps the PAHO MQTT client and routes robot reports into the
// telemetry service.
type Client struct {
	client    mqtt.Client
	telemetry *services.TelemetryService
	logger    *slog.Logger
}

// NewClient creates and connects a new MQTT client.
func NewClient(cfg *config.Config, telemetry *services.TelemetryService, logger *slog.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	mqttClient := &Client{
		telemetry: telemetry,
		logger:    logger.With("component", "mqtt_client"),
	}

	opts.SetOnConnectHandler(mqttClient.onConnect)
	opts.SetConnectionLostHandler(mqttClient.onConnectionLost)
	client := mqtt.NewClient(opts)
	mqttClient.client = client

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return mqttClient, nil
}

// Disconnect gracefully disconnects the client.
func (c *Client) Disconnect() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("MQTT client disconnected")
	}
}

func (c *Client) onConnect(client mqtt.Client) {
	c.logger.Info("Connected to MQTT broker. Subscribing to topics...")
	c.subscribe(telemetryTopic, c.handleTelemetryMessage)
	c.subscribe(logTopic, c.handleLogMessage)
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.logger.Error("Connection lost. Reconnecting...", slog.Any("error", err))
}

func (c *Client) subscribe(topic string, handler mqtt.MessageHandler) {
	if token := c.client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		c.logger.Error("Failed to subscribe to topic", "topic", topic, slog.Any("error", token.Error()))
	} else {
		c.logger.Info("Subscribed to topic", "topic", topic)
	}
}

// robotIDFromTopic extracts the robot id segment from
// citrus/v1/<robotId>/<kind>.
func robotIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 {
		return "", fmt.Errorf("unexpected topic structure: %s", topic)
	}
	return parts[2], nil
}

func (c *Client) handleTelemetryMessage(client mqtt.Client, msg mqtt.Message) {
	robotID, err := robotIDFromTopic(msg.Topic())
	if err != nil {
		c.logger.Error("Dropping telemetry message", slog.Any("error", err))
		return
	}
	logger := c.logger.With("robotId", robotID)

	var telemetry models.TelemetryMessage
	if err := json.Unmarshal(msg.Payload(), &telemetry); err != nil {
		logger.Error("Failed to parse telemetry payload", slog.Any("error", err))
		return
	}

	if err := c.telemetry.HandleTelemetry(robotID, &telemetry); err != nil {
		logger.Warn("Telemetry report dropped", slog.Any("error", err))
		return
	}
	logger.Debug("Telemetry applied", "topic", msg.Topic())
}

func (c *Client) handleLogMessage(client mqtt.Client, msg mqtt.Message) {
	robotID, err := robotIDFromTopic(msg.Topic())
	if err != nil {
		c.logger.Error("Dropping log message", slog.Any("error", err))
		return
	}
	logger := c.logger.With("robotId", robotID)

	var logMsg models.RobotLogMessage
	if err := json.Unmarshal(msg.Payload(), &logMsg); err != nil {
		logger.Error("Failed to parse log payload", slog.Any("error", err))
		return
	}

	if err := c.telemetry.HandleRobotLog(robotID, &logMsg); err != nil {
		logger.Warn("Robot log dropped", slog.Any("error", err))
	}
}

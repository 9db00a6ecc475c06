package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/config"
	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/services"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ReadingHandler receives each parsed sensor reading and the location tag it carried (may be empty)
type ReadingHandler func(reading models.Reading, location string)

// Client wraps the MQTT client with water quality specific functionality
type Client struct {
	client       mqtt.Client
	parser       *services.SensorParser
	dataHandler  ReadingHandler
	errorHandler func(error)
	isConnected  atomic.Bool
	sensorTopic  string
	alertTopic   string
}

// NewClient creates a new MQTT client for the water quality monitor
func NewClient(cfg config.MQTTConfig) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(cfg.PingTimeout)
	opts.SetConnectRetry(cfg.ConnectRetry)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := &Client{
		parser:      services.NewSensorParser(),
		sensorTopic: cfg.TopicSensorData,
		alertTopic:  cfg.TopicAlerts,
	}

	// Set connection handlers
	opts.SetDefaultPublishHandler(client.defaultMessageHandler)
	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)

	client.client = mqtt.NewClient(opts)

	return client
}

// Connect establishes connection to MQTT broker
func (c *Client) Connect() error {
	log.Println("📡 Connecting to MQTT broker...")

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Println("✅ Successfully connected to MQTT broker")
	c.isConnected.Store(true)
	return nil
}

// Disconnect closes the MQTT connection
func (c *Client) Disconnect() {
	if c.isConnected.Load() {
		c.client.Disconnect(250)
		c.isConnected.Store(false)
		log.Println("Disconnected from MQTT broker")
	}
}

// IsConnected returns the connection status
func (c *Client) IsConnected() bool {
	return c.isConnected.Load() && c.client.IsConnected()
}

// SubscribeToSensorData subscribes to the sensor data topic and its per-device variant
func (c *Client) SubscribeToSensorData() error {
	topics := map[string]byte{
		c.sensorTopic:        1,
		c.sensorTopic + "/+": 1, // + is wildcard for device ID
	}

	for topic, qos := range topics {
		if token := c.client.Subscribe(topic, qos, c.sensorDataHandler); token.Wait() && token.Error() != nil {
			return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
		}
		log.Printf("Subscribed to topic: %s", topic)
	}

	return nil
}

// SetDataHandler sets the callback function for parsed sensor readings
func (c *Client) SetDataHandler(handler ReadingHandler) {
	c.dataHandler = handler
}

// SetErrorHandler sets the callback function for errors
func (c *Client) SetErrorHandler(handler func(error)) {
	c.errorHandler = handler
}

// sensorDataHandler processes incoming sensor data messages
func (c *Client) sensorDataHandler(_ mqtt.Client, msg mqtt.Message) {
	c.handlePayload(msg.Topic(), msg.Payload())
}

// handlePayload parses a payload and hands it to the data handler
func (c *Client) handlePayload(topic string, payload []byte) {
	log.Printf("Received sensor data on topic %s: %s", topic, string(payload))

	reading, location, err := c.parser.Parse(payload)
	if err != nil {
		log.Printf("❌ Failed to parse sensor data: %v", err)
		if c.errorHandler != nil {
			c.errorHandler(fmt.Errorf("sensor data parsing failed: %w", err))
		}
		return
	}

	if c.dataHandler != nil {
		c.dataHandler(reading, location)
	}
}

// defaultMessageHandler handles messages on unsubscribed topics
func (c *Client) defaultMessageHandler(_ mqtt.Client, msg mqtt.Message) {
	log.Printf("Received message on unhandled topic %s: %s", msg.Topic(), string(msg.Payload()))
}

// onConnect callback when connection is established
func (c *Client) onConnect(_ mqtt.Client) {
	log.Println("MQTT client connected")
	c.isConnected.Store(true)
}

// onConnectionLost callback when connection is lost
func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	log.Printf("⚠️  MQTT connection lost: %v", err)
	c.isConnected.Store(false)

	if c.errorHandler != nil {
		c.errorHandler(fmt.Errorf("MQTT connection lost: %w", err))
	}
}

// PublishAlert publishes an unsafe-water alert so field devices and other services can react
func (c *Client) PublishAlert(ctx context.Context, record models.AlertRecord) error {
	if !c.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	token := c.client.Publish(c.alertTopic, 1, false, payload)
	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timed out publishing alert to %s", c.alertTopic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	log.Printf("📡 Published alert %s to %s", record.ID, c.alertTopic)
	return nil
}

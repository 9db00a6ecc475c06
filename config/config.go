package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Reading sources for the monitoring cycle
const (
	SourceSimulator = "simulator"
	SourceMQTT      = "mqtt"
)

// Config holds all configuration for the water quality monitor backend
type Config struct {
	Server   ServerConfig
	Monitor  MonitorConfig
	MQTT     MQTTConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8080" validate:"required"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
}

// MonitorConfig holds the monitoring session configuration
type MonitorConfig struct {
	Source          string        `envconfig:"MONITOR_SOURCE" default:"simulator" validate:"oneof=simulator mqtt"`
	Location        string        `envconfig:"MONITOR_LOCATION" default:"Narmada River" validate:"required"`
	Locations       []string      `envconfig:"MONITOR_LOCATIONS" default:"Narmada River,Indore City,Water Treatment Plant" validate:"min=1,dive,required"`
	LocationsFile   string        `envconfig:"MONITOR_LOCATIONS_FILE"`
	RefreshInterval time.Duration `envconfig:"MONITOR_REFRESH_INTERVAL" default:"4s" validate:"min=2s,max=10s"`
	HistorySize     int           `envconfig:"MONITOR_HISTORY_SIZE" default:"10" validate:"min=1"`
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	BrokerURL       string        `envconfig:"MQTT_BROKER_URL"`
	Broker          string        `envconfig:"MQTT_BROKER"`
	ClientID        string        `envconfig:"MQTT_CLIENT_ID" default:"aquasmart_monitor"`
	Username        string        `envconfig:"MQTT_USERNAME"`
	Password        string        `envconfig:"MQTT_PASSWORD"`
	KeepAlive       time.Duration `envconfig:"MQTT_KEEP_ALIVE" default:"30s"`
	PingTimeout     time.Duration `envconfig:"MQTT_PING_TIMEOUT" default:"10s"`
	ConnectRetry    bool          `envconfig:"MQTT_CONNECT_RETRY" default:"true"`
	TopicSensorData string        `envconfig:"MQTT_TOPIC_SENSOR_DATA" default:"aquasmart/sensors/data"`
	TopicAlerts     string        `envconfig:"MQTT_TOPIC_ALERTS" default:"aquasmart/alerts"`
}

// DatabaseConfig holds PostgreSQL configuration for the alert archive
type DatabaseConfig struct {
	Enabled  bool   `envconfig:"DB_ENABLED" default:"false"`
	URL      string `envconfig:"DATABASE_URL"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME" default:"aquasmart"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"require"`
}

// locationsFile is the YAML layout of MONITOR_LOCATIONS_FILE
type locationsFile struct {
	Locations []string `yaml:"locations"`
}

// Load reads .env (if present) and the environment into a validated Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found: %v", err)
	}
	return load()
}

// load populates Config from the current environment only
func load() (*Config, error) {
	var cfg Config

	sections := []interface{}{&cfg.Server, &cfg.Monitor, &cfg.MQTT, &cfg.Database}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Monitor.LocationsFile != "" {
		locations, err := LoadLocations(cfg.Monitor.LocationsFile)
		if err != nil {
			return nil, err
		}
		cfg.Monitor.Locations = locations
	}
	cfg.Monitor.Locations = trimLocations(cfg.Monitor.Locations)
	cfg.MQTT.BrokerURL = normalizeBrokerURL(cfg.MQTT)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	v := validator.New()
	for _, section := range []interface{}{c.Server, c.Monitor, c.MQTT, c.Database} {
		if err := v.Struct(section); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	if !c.Monitor.HasLocation(c.Monitor.Location) {
		return fmt.Errorf("invalid configuration: MONITOR_LOCATION %q is not in MONITOR_LOCATIONS", c.Monitor.Location)
	}
	if c.Monitor.Source == SourceMQTT && c.MQTT.BrokerURL == "" {
		return fmt.Errorf("invalid configuration: MONITOR_SOURCE=mqtt requires MQTT_BROKER")
	}
	return nil
}

// HasLocation reports whether name is one of the configured locations
func (m MonitorConfig) HasLocation(name string) bool {
	for _, l := range m.Locations {
		if l == name {
			return true
		}
	}
	return false
}

// MQTTEnabled reports whether a broker has been configured
func (c *Config) MQTTEnabled() bool {
	return c.MQTT.BrokerURL != ""
}

// LoadLocations reads the monitoring location list from a YAML file
func LoadLocations(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file %s: %w", path, err)
	}

	var file locationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse locations file %s: %w", path, err)
	}
	if len(file.Locations) == 0 {
		return nil, fmt.Errorf("locations file %s has no locations", path)
	}

	return file.Locations, nil
}

// BuildConnectionString builds a PostgreSQL connection string, preferring DATABASE_URL
func (d DatabaseConfig) BuildConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func trimLocations(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// normalizeBrokerURL returns the broker URL with tcp:// prefix if not present
// Supports both "localhost:1883" and "tcp://localhost:1883" formats
func normalizeBrokerURL(m MQTTConfig) string {
	broker := m.Broker
	if broker == "" {
		broker = m.BrokerURL
	}
	if broker == "" {
		return ""
	}

	if !strings.HasPrefix(broker, "tcp:") && !strings.HasPrefix(broker, "ssl") &&
		!strings.HasPrefix(broker, "ws") && !strings.HasPrefix(broker, "mqtt") {
		return "tcp://" + broker
	}
	return broker
}

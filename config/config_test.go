package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, SourceSimulator, cfg.Monitor.Source)
	assert.Equal(t, "Narmada River", cfg.Monitor.Location)
	assert.Equal(t, []string{"Narmada River", "Indore City", "Water Treatment Plant"}, cfg.Monitor.Locations)
	assert.Equal(t, 4*time.Second, cfg.Monitor.RefreshInterval)
	assert.Equal(t, 10, cfg.Monitor.HistorySize)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.MQTTEnabled())
}

func TestLoad_BrokerPrefix(t *testing.T) {
	t.Setenv("MQTT_BROKER", "broker.local:1883")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTT.BrokerURL)
	assert.True(t, cfg.MQTTEnabled())
}

func TestLoad_RejectsRefreshOutOfRange(t *testing.T) {
	t.Setenv("MONITOR_REFRESH_INTERVAL", "30s")

	_, err := load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownLocation(t *testing.T) {
	t.Setenv("MONITOR_LOCATION", "Atlantis")

	_, err := load()
	assert.ErrorContains(t, err, "Atlantis")
}

func TestLoad_MQTTSourceNeedsBroker(t *testing.T) {
	t.Setenv("MONITOR_SOURCE", SourceMQTT)

	_, err := load()
	assert.Error(t, err)
}

func TestLoad_LocationsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	content := "locations:\n  - Lake Pichola\n  - Yamuna Ghat\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("MONITOR_LOCATIONS_FILE", path)
	t.Setenv("MONITOR_LOCATION", "Yamuna Ghat")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Lake Pichola", "Yamuna Ghat"}, cfg.Monitor.Locations)
}

func TestLoadLocations_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locations: []\n"), 0o644))

	_, err := LoadLocations(path)
	assert.Error(t, err)
}

func TestBuildConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "wq", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=wq sslmode=disable", d.BuildConnectionString())

	d.URL = "postgres://u:p@db/wq"
	assert.Equal(t, "postgres://u:p@db/wq", d.BuildConnectionString())
}

package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
)

// SensorParser handles parsing of sensor payloads from field devices
type SensorParser struct{}

// NewSensorParser creates a new instance of SensorParser
func NewSensorParser() *SensorParser {
	return &SensorParser{}
}

// ParseSensorJSON parses a JSON payload: {"ph":7.1,"turbidity":1.2,"tds":340,"location":"..."}
func (sp *SensorParser) ParseSensorJSON(payload []byte) (models.Reading, string, error) {
	var sensorData models.SensorData

	if err := json.Unmarshal(payload, &sensorData); err != nil {
		return models.Reading{}, "", fmt.Errorf("failed to parse sensor JSON: %w", err)
	}

	if !sensorData.ValidateReading() {
		return models.Reading{}, "", fmt.Errorf("invalid sensor reading values: pH=%.2f, Turbidity=%.2f, TDS=%.2f",
			sensorData.Ph, sensorData.Turbidity, sensorData.TDS)
	}

	return sensorData.ToReading(), strings.TrimSpace(sensorData.Location), nil
}

// ParseSensorString parses comma-separated sensor values (fallback format)
// Expected format: "ph,turbidity,tds"
func (sp *SensorParser) ParseSensorString(payload string) (models.Reading, error) {
	parts := strings.Split(strings.TrimSpace(payload), ",")
	if len(parts) != 3 {
		return models.Reading{}, fmt.Errorf("failed to parse sensor string: expected 3 values (ph,turbidity,tds), got %d", len(parts))
	}

	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return models.Reading{}, fmt.Errorf("failed to parse sensor string value %q: %w", part, err)
		}
		values[i] = v
	}

	sensorData := models.SensorData{Ph: values[0], Turbidity: values[1], TDS: values[2]}
	if !sensorData.ValidateReading() {
		return models.Reading{}, fmt.Errorf("invalid sensor reading values: pH=%.2f, Turbidity=%.2f, TDS=%.2f",
			sensorData.Ph, sensorData.Turbidity, sensorData.TDS)
	}

	return sensorData.ToReading(), nil
}

// Parse tries JSON first and falls back to the comma-separated format
func (sp *SensorParser) Parse(payload []byte) (models.Reading, string, error) {
	reading, location, err := sp.ParseSensorJSON(payload)
	if err == nil {
		return reading, location, nil
	}

	reading, strErr := sp.ParseSensorString(string(payload))
	if strErr != nil {
		return models.Reading{}, "", fmt.Errorf("unrecognized sensor payload: %v; %w", err, strErr)
	}
	return reading, "", nil
}

// FormatSensorReading formats an evaluation for logging or debugging
func (sp *SensorParser) FormatSensorReading(eval *models.Evaluation) string {
	return fmt.Sprintf("Location: %s, Time: %s, Source: %s, %s, Status: %s, WQI: %d",
		eval.Location,
		eval.Timestamp.Format("2006-01-02 15:04:05"),
		eval.Source,
		eval.Reading,
		eval.Tier,
		eval.Index)
}

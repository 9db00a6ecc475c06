package models

import (
	"fmt"
	"math"
	"time"
)

// Reading is one sensor sample: pH, turbidity (NTU) and total dissolved solids (ppm).
// Values are taken as-is; range checking belongs to whatever produced the reading.
type Reading struct {
	Ph        float64 `json:"ph"`
	Turbidity float64 `json:"turbidity"`
	TDS       int     `json:"tds"`
}

// ReadingSource identifies where a reading came from
type ReadingSource string

const (
	SourceSimulated ReadingSource = "simulated"
	SourceSpike     ReadingSource = "spike"
	SourceManual    ReadingSource = "manual"
	SourceSensor    ReadingSource = "sensor"
)

// MaxTDS is the highest TDS accepted from a sensor, in ppm (well above seawater)
const MaxTDS = 100000

// SensorData represents the raw payload received from a sensor device
type SensorData struct {
	Ph        float64 `json:"ph" validate:"gte=0,lte=14"`
	Turbidity float64 `json:"turbidity" validate:"gte=0"`
	TDS       float64 `json:"tds" validate:"gte=0,lte=100000"`
	Location  string  `json:"location,omitempty"`
}

// ValidateReading checks if sensor values are within their physical ranges
func (s *SensorData) ValidateReading() bool {
	for _, v := range []float64{s.Ph, s.Turbidity, s.TDS} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	// Ph should be between 0-14
	if s.Ph < 0 || s.Ph > 14 {
		return false
	}
	// Turbidity should be non-negative (NTU units)
	if s.Turbidity < 0 {
		return false
	}
	// TDS should be non-negative and fit a whole ppm value (ppm units)
	if s.TDS < 0 || s.TDS > MaxTDS {
		return false
	}
	return true
}

// ToReading converts the payload to a Reading, rounding TDS to whole ppm
func (s *SensorData) ToReading() Reading {
	return Reading{
		Ph:        s.Ph,
		Turbidity: s.Turbidity,
		TDS:       int(s.TDS + 0.5),
	}
}

// Tier classifies the reading
func (r Reading) Tier() SafetyTier {
	return Classify(r.Ph, r.Turbidity, float64(r.TDS))
}

// Index scores the reading
func (r Reading) Index() int {
	return QualityIndex(r.Ph, r.Turbidity, float64(r.TDS))
}

// String formats the reading for logs
func (r Reading) String() string {
	return fmt.Sprintf("pH: %.2f, Turbidity: %.2f NTU, TDS: %d ppm", r.Ph, r.Turbidity, r.TDS)
}

// Evaluation is the outcome of one monitoring cycle
type Evaluation struct {
	Reading        Reading       `json:"reading"`
	Location       string        `json:"location"`
	Source         ReadingSource `json:"source"`
	Tier           SafetyTier    `json:"status"`
	Index          int           `json:"wqi"`
	Recommendation string        `json:"recommendation"`
	Timestamp      time.Time     `json:"timestamp"`
	Alert          *AlertRecord  `json:"alert,omitempty"`
}

// NewEvaluation classifies and scores a reading
func NewEvaluation(reading Reading, location string, source ReadingSource, now time.Time) Evaluation {
	tier := reading.Tier()
	return Evaluation{
		Reading:        reading,
		Location:       location,
		Source:         source,
		Tier:           tier,
		Index:          reading.Index(),
		Recommendation: tier.Recommendation(),
		Timestamp:      now,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertRecord is one logged unsafe-water event
type AlertRecord struct {
	ID        uuid.UUID `json:"id"`
	Time      time.Time `json:"time"`
	Location  string    `json:"location"`
	Ph        float64   `json:"ph"`
	Turbidity float64   `json:"turbidity"`
	TDS       int       `json:"tds"`
}

// NewAlertRecord creates an alert for a reading; the timestamp is kept at second precision
func NewAlertRecord(reading Reading, location string, now time.Time) AlertRecord {
	return AlertRecord{
		ID:        uuid.New(),
		Time:      now.Truncate(time.Second),
		Location:  location,
		Ph:        reading.Ph,
		Turbidity: reading.Turbidity,
		TDS:       reading.TDS,
	}
}

// Reading returns the sensor values captured by the alert
func (a AlertRecord) Reading() Reading {
	return Reading{Ph: a.Ph, Turbidity: a.Turbidity, TDS: a.TDS}
}

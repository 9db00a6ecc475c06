package store

import (
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
)

// DefaultHistorySize is the number of readings kept for trend charts
const DefaultHistorySize = 10

// HistoryWindow keeps the most recent readings as three parallel series.
// It is not safe for concurrent use; the owning session serializes access.
type HistoryWindow struct {
	ph        []float64
	turbidity []float64
	tds       []int
	size      int
}

// HistorySnapshot is a read-only copy of the history window
type HistorySnapshot struct {
	Ph        []float64 `json:"ph"`
	Turbidity []float64 `json:"turbidity"`
	TDS       []int     `json:"tds"`
}

// NewHistoryWindow creates a window keeping the last size readings
func NewHistoryWindow(size int) *HistoryWindow {
	if size <= 0 {
		size = DefaultHistorySize
	}

	return &HistoryWindow{
		ph:        make([]float64, 0, size+1),
		turbidity: make([]float64, 0, size+1),
		tds:       make([]int, 0, size+1),
		size:      size,
	}
}

// Append pushes a reading and drops the oldest entries beyond the window size
func (h *HistoryWindow) Append(reading models.Reading) {
	h.ph = append(h.ph, reading.Ph)
	h.turbidity = append(h.turbidity, reading.Turbidity)
	h.tds = append(h.tds, reading.TDS)

	// Maintain maximum size by removing oldest entries
	if len(h.ph) > h.size {
		h.ph = h.ph[len(h.ph)-h.size:]
		h.turbidity = h.turbidity[len(h.turbidity)-h.size:]
		h.tds = h.tds[len(h.tds)-h.size:]
	}
}

// Len returns the number of readings currently held
func (h *HistoryWindow) Len() int {
	return len(h.ph)
}

// Size returns the window capacity
func (h *HistoryWindow) Size() int {
	return h.size
}

// Snapshot returns copies of the three series, oldest first
func (h *HistoryWindow) Snapshot() HistorySnapshot {
	snap := HistorySnapshot{
		Ph:        make([]float64, len(h.ph)),
		Turbidity: make([]float64, len(h.turbidity)),
		TDS:       make([]int, len(h.tds)),
	}
	copy(snap.Ph, h.ph)
	copy(snap.Turbidity, h.turbidity)
	copy(snap.TDS, h.tds)
	return snap
}

// Reset empties the window
func (h *HistoryWindow) Reset() {
	h.ph = h.ph[:0]
	h.turbidity = h.turbidity[:0]
	h.tds = h.tds[:0]
}

// AlertLog is an append-only log of unsafe readings
type AlertLog struct {
	records []models.AlertRecord
}

// NewAlertLog creates an empty alert log
func NewAlertLog() *AlertLog {
	return &AlertLog{records: make([]models.AlertRecord, 0)}
}

// MaybeAppend logs the reading when the tier is Unsafe and is a no-op otherwise.
// Repeated unsafe cycles produce repeated records.
func (l *AlertLog) MaybeAppend(tier models.SafetyTier, reading models.Reading, location string, now time.Time) (models.AlertRecord, bool) {
	if !tier.IsUnsafe() {
		return models.AlertRecord{}, false
	}

	record := models.NewAlertRecord(reading, location, now)
	l.records = append(l.records, record)
	return record, true
}

// Len returns the number of logged alerts
func (l *AlertLog) Len() int {
	return len(l.records)
}

// Records returns a copy of the log in append order
func (l *AlertLog) Records() []models.AlertRecord {
	out := make([]models.AlertRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Reset empties the log
func (l *AlertLog) Reset() {
	l.records = make([]models.AlertRecord, 0)
}

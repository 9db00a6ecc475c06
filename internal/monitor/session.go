package monitor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/store"
)

// ErrUnknownLocation is returned when selecting a location outside the configured list
var ErrUnknownLocation = errors.New("unknown monitoring location")

// DefaultLocation is used when a session is created without one
const DefaultLocation = "Narmada River"

// Publisher receives every evaluation after the session state has been updated
type Publisher interface {
	BroadcastEvaluation(eval *models.Evaluation)
	BroadcastAlert(record *models.AlertRecord)
	BroadcastSessionReset()
}

// AlertSink receives every logged alert (archive, MQTT, ...)
type AlertSink interface {
	ArchiveAlert(ctx context.Context, record models.AlertRecord) error
}

// AlertSinkFunc adapts a function to AlertSink
type AlertSinkFunc func(ctx context.Context, record models.AlertRecord) error

// ArchiveAlert calls f
func (f AlertSinkFunc) ArchiveAlert(ctx context.Context, record models.AlertRecord) error {
	return f(ctx, record)
}

// Stats summarizes a session
type Stats struct {
	Cycles     int        `json:"cycles"`
	Alerts     int        `json:"alerts"`
	Readings   int        `json:"readings_in_window"`
	Location   string     `json:"location"`
	StartedAt  time.Time  `json:"started_at"`
	LastCycle  *time.Time `json:"last_cycle,omitempty"`
	LastStatus string     `json:"last_status,omitempty"`
}

// Session owns the rolling history and alert log of one monitoring session.
// The zero value is ready to use; state is created on first use.
type Session struct {
	mu        sync.RWMutex
	history   *store.HistoryWindow
	alerts    *store.AlertLog
	latest    *models.Evaluation
	location  string
	locations []string
	cycles    int
	startedAt time.Time

	historySize int
	publisher   Publisher
	sinks       []AlertSink
	now         func() time.Time
	sinkTimeout time.Duration
}

// Option configures a Session
type Option func(*Session)

// WithHistorySize sets the rolling window length
func WithHistorySize(size int) Option {
	return func(s *Session) { s.historySize = size }
}

// WithLocations sets the selectable locations; the first one becomes current
func WithLocations(locations ...string) Option {
	return func(s *Session) {
		s.locations = append([]string(nil), locations...)
		if len(locations) > 0 {
			s.location = locations[0]
		}
	}
}

// WithPublisher attaches a live publisher (WebSocket hub)
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// WithAlertSink attaches an alert sink; may be given several times
func WithAlertSink(sink AlertSink) Option {
	return func(s *Session) { s.sinks = append(s.sinks, sink) }
}

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a monitoring session
func NewSession(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	s.mu.Lock()
	s.init()
	s.mu.Unlock()
	return s
}

// init lazily creates state; callers hold the write lock
func (s *Session) init() {
	if s.now == nil {
		s.now = time.Now
	}
	if s.history == nil {
		s.history = store.NewHistoryWindow(s.historySize)
	}
	if s.alerts == nil {
		s.alerts = store.NewAlertLog()
	}
	if s.location == "" {
		s.location = DefaultLocation
	}
	if s.startedAt.IsZero() {
		s.startedAt = s.now()
	}
	if s.sinkTimeout == 0 {
		s.sinkTimeout = 5 * time.Second
	}
}

// Evaluate runs one monitoring cycle: classify, score, record history and
// log an alert when the reading is unsafe. Cycles are serialized.
func (s *Session) Evaluate(reading models.Reading, source models.ReadingSource) models.Evaluation {
	s.mu.Lock()
	s.init()
	return s.evaluateLocked(reading, source)
}

// EvaluateAt switches to location and runs one cycle tagged with it, under a
// single lock so no other caller can retag the cycle in between.
// An empty location keeps the current one.
func (s *Session) EvaluateAt(reading models.Reading, location string, source models.ReadingSource) (models.Evaluation, error) {
	s.mu.Lock()
	s.init()

	if location != "" && location != s.location {
		if len(s.locations) > 0 && !contains(s.locations, location) {
			s.mu.Unlock()
			return models.Evaluation{}, ErrUnknownLocation
		}
		s.location = location
		log.Printf("📍 Monitoring location set to %s", location)
	}

	return s.evaluateLocked(reading, source), nil
}

// evaluateLocked runs a cycle; the caller holds the write lock, which is released here
func (s *Session) evaluateLocked(reading models.Reading, source models.ReadingSource) models.Evaluation {
	now := s.now()
	eval := models.NewEvaluation(reading, s.location, source, now)
	s.history.Append(reading)
	if record, logged := s.alerts.MaybeAppend(eval.Tier, reading, s.location, now); logged {
		eval.Alert = &record
	}
	s.cycles++
	latest := eval
	s.latest = &latest

	publisher := s.publisher
	sinks := s.sinks
	timeout := s.sinkTimeout
	s.mu.Unlock()

	if eval.Alert != nil {
		log.Printf("🚨 Unsafe water at %s: %s (WQI %d)", eval.Location, reading, eval.Index)
		for _, sink := range sinks {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			if err := sink.ArchiveAlert(ctx, *eval.Alert); err != nil {
				log.Printf("⚠️  Warning: Failed to forward alert %s: %v", eval.Alert.ID, err)
			}
			cancel()
		}
	}

	if publisher != nil {
		publisher.BroadcastEvaluation(&eval)
		if eval.Alert != nil {
			publisher.BroadcastAlert(eval.Alert)
		}
	}

	return eval
}

// Latest returns the most recent evaluation
func (s *Session) Latest() (*models.Evaluation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, false
	}

	// Return a copy to avoid race conditions
	eval := *s.latest
	return &eval, true
}

// History returns a copy of the rolling window
func (s *Session) History() store.HistorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	return s.history.Snapshot()
}

// Alerts returns a copy of the alert log in append order
func (s *Session) Alerts() []models.AlertRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	return s.alerts.Records()
}

// Location returns the current monitoring location tag
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	return s.location
}

// Locations returns the selectable locations
func (s *Session) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.locations...)
}

// SetLocation changes the location tag used for subsequent cycles
func (s *Session) SetLocation(location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	if len(s.locations) > 0 && !contains(s.locations, location) {
		return ErrUnknownLocation
	}
	if location == "" {
		return ErrUnknownLocation
	}

	s.location = location
	log.Printf("📍 Monitoring location set to %s", location)
	return nil
}

// Stats returns session counters
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	stats := Stats{
		Cycles:    s.cycles,
		Alerts:    s.alerts.Len(),
		Readings:  s.history.Len(),
		Location:  s.location,
		StartedAt: s.startedAt,
	}
	if s.latest != nil {
		lastCycle := s.latest.Timestamp
		stats.LastCycle = &lastCycle
		stats.LastStatus = string(s.latest.Tier)
	}
	return stats
}

// Reset discards history, alerts and the latest evaluation. The location is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	s.init()
	s.history.Reset()
	s.alerts.Reset()
	s.latest = nil
	s.cycles = 0
	s.startedAt = s.now()
	publisher := s.publisher
	s.mu.Unlock()

	log.Println("🔄 Monitoring session reset")
	if publisher != nil {
		publisher.BroadcastSessionReset()
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

package simulator

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
)

// ErrOutOfRange is returned when demo values fall outside the control ranges
var ErrOutOfRange = errors.New("demo value out of range")

// Range is an inclusive bound for one simulated metric
type Range struct {
	Min float64
	Max float64
}

// Profile describes the distribution of one reading kind
type Profile struct {
	Ph        Range
	Turbidity Range
	TDS       Range
}

var (
	// NormalProfile covers everyday fluctuation around potable water
	NormalProfile = Profile{
		Ph:        Range{Min: 6.5, Max: 8.8},
		Turbidity: Range{Min: 0, Max: 6},
		TDS:       Range{Min: 100, Max: 700},
	}

	// ContaminationProfile is drawn when a contamination spike is simulated
	ContaminationProfile = Profile{
		Ph:        Range{Min: 3, Max: 5},
		Turbidity: Range{Min: 7, Max: 10},
		TDS:       Range{Min: 900, Max: 1200},
	}

	// DemoLimits are the accepted manual control ranges
	DemoLimits = Profile{
		Ph:        Range{Min: 0, Max: 14},
		Turbidity: Range{Min: 0, Max: 10},
		TDS:       Range{Min: 0, Max: 1200},
	}

	// DefaultDemoReading is used when demo mode is switched on without values
	DefaultDemoReading = models.Reading{Ph: 7.2, Turbidity: 2.0, TDS: 350}
)

// DemoState reports manual control mode
type DemoState struct {
	Enabled bool           `json:"enabled"`
	Reading models.Reading `json:"reading"`
}

// Simulator produces readings for the monitoring cycle
type Simulator struct {
	mu           sync.Mutex
	rng          *rand.Rand
	demo         bool
	demoReading  models.Reading
	spikePending bool
}

// New creates a simulator seeded from the runtime source
func New() *Simulator {
	return NewWithSeed(rand.Uint64(), rand.Uint64())
}

// NewWithSeed creates a deterministic simulator
func NewWithSeed(seed1, seed2 uint64) *Simulator {
	return &Simulator{
		rng:         rand.New(rand.NewPCG(seed1, seed2)),
		demoReading: DefaultDemoReading,
	}
}

// Next returns the reading for the next cycle.
// Demo values win over a pending spike, which wins over normal draws.
func (s *Simulator) Next() (models.Reading, models.ReadingSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.demo:
		return s.demoReading, models.SourceManual
	case s.spikePending:
		s.spikePending = false
		return s.draw(ContaminationProfile), models.SourceSpike
	default:
		return s.draw(NormalProfile), models.SourceSimulated
	}
}

// Spike draws a contamination reading immediately
func (s *Simulator) Spike() models.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draw(ContaminationProfile)
}

// TriggerSpike makes the next Next call return a contamination reading
func (s *Simulator) TriggerSpike() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spikePending = true
}

// SetDemo enables manual mode with the given values
func (s *Simulator) SetDemo(reading models.Reading) error {
	if !DemoLimits.Contains(reading) {
		return ErrOutOfRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.demo = true
	s.demoReading = reading
	return nil
}

// DisableDemo returns to simulated readings
func (s *Simulator) DisableDemo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demo = false
}

// Demo returns the manual control state
func (s *Simulator) Demo() DemoState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DemoState{Enabled: s.demo, Reading: s.demoReading}
}

// draw samples a reading; callers hold the lock
func (s *Simulator) draw(p Profile) models.Reading {
	return models.Reading{
		Ph:        round2(p.Ph.Min + s.rng.Float64()*(p.Ph.Max-p.Ph.Min)),
		Turbidity: round2(p.Turbidity.Min + s.rng.Float64()*(p.Turbidity.Max-p.Turbidity.Min)),
		TDS:       int(p.TDS.Min) + s.rng.IntN(int(p.TDS.Max-p.TDS.Min)+1),
	}
}

// Contains reports whether every metric of the reading is inside the profile
func (p Profile) Contains(r models.Reading) bool {
	return p.Ph.contains(r.Ph) && p.Turbidity.contains(r.Turbidity) && p.TDS.contains(float64(r.TDS))
}

func (r Range) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/monitor"
)

// Refresh interval bounds
const (
	MinRefreshInterval     = 2 * time.Second
	MaxRefreshInterval     = 10 * time.Second
	DefaultRefreshInterval = 4 * time.Second
)

// ErrInvalidInterval is returned for refresh intervals outside the allowed bounds
var ErrInvalidInterval = errors.New("refresh interval out of range")

// ReadingSource supplies one reading per cycle
type ReadingSource interface {
	Next() (models.Reading, models.ReadingSource)
}

// Scheduler drives monitoring cycles on a fixed refresh interval
type Scheduler struct {
	session   *monitor.Session
	source    ReadingSource
	ticker    *time.Ticker
	stopChan  chan struct{}
	doneChan  chan struct{}
	mu        sync.RWMutex
	interval  time.Duration
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(session *monitor.Session, source ReadingSource, interval time.Duration) *Scheduler {
	if ValidateInterval(interval) != nil {
		interval = DefaultRefreshInterval
	}

	return &Scheduler{
		session:  session,
		source:   source,
		interval: interval,
	}
}

// ValidateInterval checks the refresh interval bounds
func ValidateInterval(d time.Duration) error {
	if d < MinRefreshInterval || d > MaxRefreshInterval {
		return fmt.Errorf("%w: %s (allowed %s-%s)", ErrInvalidInterval, d, MinRefreshInterval, MaxRefreshInterval)
	}
	return nil
}

// Start begins the scheduler background process
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		log.Println("⚠️  Scheduler: Already running")
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.isRunning = true

	log.Printf("🕐 Scheduler: Started - evaluating a reading every %s", s.interval)

	go s.run(s.ticker, s.stopChan, s.doneChan)
}

// Stop halts the scheduler and waits for an in-flight cycle to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}

	s.ticker.Stop()
	close(s.stopChan)
	done := s.doneChan
	s.isRunning = false
	s.mu.Unlock()

	<-done
	log.Println("🛑 Scheduler: Stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run(ticker *time.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	// Evaluate immediately on start
	s.RunCycle()

	for {
		select {
		case <-ticker.C:
			s.RunCycle()
		case <-stop:
			return
		}
	}
}

// RunCycle draws one reading from the source and evaluates it
func (s *Scheduler) RunCycle() models.Evaluation {
	reading, source := s.source.Next()
	return s.session.Evaluate(reading, source)
}

// SetInterval changes the refresh interval, taking effect on the next tick
func (s *Scheduler) SetInterval(d time.Duration) error {
	if err := ValidateInterval(d); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = d
	if s.isRunning {
		s.ticker.Reset(d)
	}

	log.Printf("⏱️  Scheduler: Refresh interval set to %s", d)
	return nil
}

// Interval returns the current refresh interval
func (s *Scheduler) Interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

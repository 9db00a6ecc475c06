package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/store"
	"github.com/sony/gobreaker/v2"
)

// Archive query limits
const (
	DefaultAlertLimit = 50
	MaxAlertLimit     = 500
)

// ErrArchiveUnavailable is returned while the archive circuit breaker is open
var ErrArchiveUnavailable = errors.New("alert archive temporarily unavailable")

// Queryer is the subset of *sql.DB the alert store needs
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PingContext(ctx context.Context) error
}

// AlertStore persists unsafe-water alerts in PostgreSQL
type AlertStore struct {
	db      Queryer
	breaker *gobreaker.CircuitBreaker[sql.Result]
}

var _ store.AlertArchive = (*AlertStore)(nil)

// NewAlertStore creates a new alert store. Writes trip the breaker after
// five consecutive failures and probe again after 30 seconds.
func NewAlertStore(db Queryer) *AlertStore {
	return NewAlertStoreWithBreaker(db, gobreaker.NewCircuitBreaker[sql.Result](gobreaker.Settings{
		Name:        "water_alerts",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️  Circuit breaker %s: %s -> %s", name, from, to)
		},
	}))
}

// NewAlertStoreWithBreaker creates an alert store with a caller-provided breaker
func NewAlertStoreWithBreaker(db Queryer, breaker *gobreaker.CircuitBreaker[sql.Result]) *AlertStore {
	return &AlertStore{db: db, breaker: breaker}
}

// Ping checks the database connection
func (s *AlertStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ArchiveAlert stores one alert record. Re-archiving the same record is a no-op.
func (s *AlertStore) ArchiveAlert(ctx context.Context, record models.AlertRecord) error {
	query := `
		INSERT INTO water_alerts (id, recorded_at, location, ph, turbidity, tds)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.breaker.Execute(func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, record.ID.String(), record.Time, record.Location,
			record.Ph, record.Turbidity, record.TDS)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}
	if err != nil {
		return fmt.Errorf("failed to archive alert %s: %w", record.ID, err)
	}
	return nil
}

// RecentAlerts returns archived alerts, newest first
func (s *AlertStore) RecentAlerts(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	limit = ClampLimit(limit)

	query := `
		SELECT id, recorded_at, location, ph, turbidity, tds
		FROM water_alerts
		ORDER BY recorded_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	records := make([]models.AlertRecord, 0, limit)
	for rows.Next() {
		var record models.AlertRecord
		if err := rows.Scan(&record.ID, &record.Time, &record.Location,
			&record.Ph, &record.Turbidity, &record.TDS); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alerts: %w", err)
	}

	return records, nil
}

// CountAlerts returns the number of archived alerts
func (s *AlertStore) CountAlerts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM water_alerts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// ClampLimit bounds a requested page size
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultAlertLimit
	}
	if limit > MaxAlertLimit {
		return MaxAlertLimit
	}
	return limit
}

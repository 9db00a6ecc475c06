package store

import (
	"context"
	"errors"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
)

// ErrArchiveDisabled is returned when no alert archive is configured
var ErrArchiveDisabled = errors.New("alert archive is not enabled")

// AlertArchive defines durable storage for alert records beyond the session
type AlertArchive interface {
	// Health check
	Ping(ctx context.Context) error

	ArchiveAlert(ctx context.Context, record models.AlertRecord) error
	RecentAlerts(ctx context.Context, limit int) ([]models.AlertRecord, error)
	CountAlerts(ctx context.Context) (int, error)
}

package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSchema logs the steps a migration runs
type recordingSchema struct {
	steps    []string
	count    int
	checkErr error
}

func (r *recordingSchema) schema() archiveSchema {
	return archiveSchema{
		Drop:   func() error { r.steps = append(r.steps, "drop"); return nil },
		Create: func() error { r.steps = append(r.steps, "create"); return nil },
		Check:  func() error { r.steps = append(r.steps, "check"); return r.checkErr },
		CountAlerts: func(context.Context) (int, error) {
			r.steps = append(r.steps, "count")
			return r.count, nil
		},
	}
}

func TestRunMigration_Steps(t *testing.T) {
	tests := []struct {
		name  string
		opts  migrateOptions
		steps []string
	}{
		{"default create", migrateOptions{Create: true}, []string{"create"}},
		{"drop then create", migrateOptions{Drop: true, Create: true}, []string{"drop", "create"}},
		{"check only", migrateOptions{Check: true}, []string{"check", "count"}},
		{"all", migrateOptions{Drop: true, Create: true, Check: true}, []string{"drop", "create", "check", "count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSchema{}
			var out bytes.Buffer
			require.NoError(t, runMigration(context.Background(), &out, rec.schema(), tt.opts))
			assert.Equal(t, tt.steps, rec.steps)
			assert.Contains(t, out.String(), "Migration completed")
		})
	}
}

func TestRunMigration_ReportsArchivedAlertCount(t *testing.T) {
	rec := &recordingSchema{count: 42}
	var out bytes.Buffer

	require.NoError(t, runMigration(context.Background(), &out, rec.schema(), migrateOptions{Check: true}))
	assert.Contains(t, out.String(), "water_alerts holds 42 archived alerts")
}

func TestRunMigration_CheckFailureSkipsCount(t *testing.T) {
	rec := &recordingSchema{checkErr: errors.New("water_alerts missing")}
	var out bytes.Buffer

	err := runMigration(context.Background(), &out, rec.schema(), migrateOptions{Check: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "water_alerts missing")
	assert.Equal(t, []string{"check"}, rec.steps)
	assert.NotContains(t, out.String(), "Migration completed")
}

func TestMigrateCommand_Flags(t *testing.T) {
	cmd := migrateCmd()

	create, err := cmd.Flags().GetBool("create")
	require.NoError(t, err)
	assert.True(t, create)

	drop, err := cmd.Flags().GetBool("drop")
	require.NoError(t, err)
	assert.False(t, drop)

	check, err := cmd.Flags().GetBool("check")
	require.NoError(t, err)
	assert.False(t, check)
}

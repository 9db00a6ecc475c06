package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
)

func TestEvaluateCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"evaluate", "--ph", "4", "--turbidity", "9", "--tds", "1000"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Status:         Unsafe")
	assert.Contains(t, out.String(), "WQI:            0")
	assert.Contains(t, out.String(), "Do NOT consume. Inform authorities.")
}

func TestRunSimulation_SpikesProduceAlerts(t *testing.T) {
	var out bytes.Buffer
	err := runSimulation(&out, simulateOptions{
		Cycles:     6,
		SpikeEvery: 3,
		Location:   "Indore City",
		Seed:       42,
		CSV:        true,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Location: Indore City")
	assert.Contains(t, text, "Source: spike")
	assert.Contains(t, text, "Time,Location,pH,Turbidity,TDS")

	// Normal draws can also be unsafe, so at least the two spikes are logged
	csvStart := strings.Index(text, "Time,Location,pH,Turbidity,TDS")
	rows := strings.Split(strings.TrimSpace(text[csvStart:]), "\n")
	assert.GreaterOrEqual(t, len(rows)-1, 2)
}

func TestRunSimulation_RejectsBadFlags(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runSimulation(&out, simulateOptions{Cycles: 0}))
	assert.Error(t, runSimulation(&out, simulateOptions{Cycles: 3, SpikeEvery: -1}))
}

func TestPrintAlerts(t *testing.T) {
	var out bytes.Buffer
	printAlerts(&out, []models.AlertRecord{
		models.NewAlertRecord(models.Reading{Ph: 4, Turbidity: 9, TDS: 1000}, "Narmada River",
			time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC)),
	}, 3)

	assert.Contains(t, out.String(), "Latest 1 of 3 Archived Alerts")
	assert.Contains(t, out.String(), "2026-10-19 14:05:09")
	assert.Contains(t, out.String(), "Narmada River")

	out.Reset()
	printAlerts(&out, nil, 0)
	assert.Contains(t, out.String(), "No alerts archived yet")
}

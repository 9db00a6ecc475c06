package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/store"
)

func sampleAlerts() []models.AlertRecord {
	base := time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC)
	return []models.AlertRecord{
		models.NewAlertRecord(models.Reading{Ph: 4.0, Turbidity: 9.0, TDS: 1000}, "Narmada River", base),
		models.NewAlertRecord(models.Reading{Ph: 3.27, Turbidity: 7.5, TDS: 1180}, "Indore City", base.Add(4*time.Second)),
	}
}

func TestGenerateCSV_EmptyLogHasHeaderOnly(t *testing.T) {
	rows := NewExportService().GenerateCSV(nil)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Time", "Location", "pH", "Turbidity", "TDS"}, rows[0])
}

func TestGenerateCSV_RowsInAppendOrder(t *testing.T) {
	rows := NewExportService().GenerateCSV(sampleAlerts())

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"14:05:09", "Narmada River", "4.00", "9.00", "1000"}, rows[1])
	assert.Equal(t, []string{"14:05:13", "Indore City", "3.27", "7.50", "1180"}, rows[2])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExportService().WriteCSV(&buf, sampleAlerts()[:1]))

	assert.Equal(t, "Time,Location,pH,Turbidity,TDS\n14:05:09,Narmada River,4.00,9.00,1000\n", buf.String())
}

func TestGenerateExcel(t *testing.T) {
	history := store.NewHistoryWindow(store.DefaultHistorySize)
	history.Append(models.Reading{Ph: 7.2, Turbidity: 2.0, TDS: 350})
	history.Append(models.Reading{Ph: 4.0, Turbidity: 9.0, TDS: 1000})

	f, err := NewExportService().GenerateExcel(ExportData{
		Alerts:  sampleAlerts(),
		History: history.Snapshot(),
		ExportMetadata: ExportMetadata{
			GeneratedAt: time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC),
			Location:    "Narmada River",
			Cycles:      12,
		},
	})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Alerts", "Trends"}, f.GetSheetList())

	header, err := f.GetCellValue("Alerts", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Time", header)

	location, err := f.GetCellValue("Alerts", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Indore City", location)

	tds, err := f.GetCellValue("Trends", "D3")
	require.NoError(t, err)
	assert.Equal(t, "1000", tds)

	count, err := f.GetCellValue("Summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

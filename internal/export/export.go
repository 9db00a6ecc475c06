package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/store"
	"github.com/xuri/excelize/v2"
)

// Alert report file names offered for download
const (
	CSVFileName   = "water_alert_report.csv"
	ExcelFileName = "water_alert_report.xlsx"
)

// alertColumns is the column order of every alert table
var alertColumns = []string{"Time", "Location", "pH", "Turbidity", "TDS"}

// ExportService handles alert report export
type ExportService struct{}

// NewExportService creates a new export service instance
func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportData represents data to be exported
type ExportData struct {
	Alerts         []models.AlertRecord
	History        store.HistorySnapshot
	ExportMetadata ExportMetadata
}

// ExportMetadata contains information about the export
type ExportMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Location    string    `json:"location"`
	Cycles      int       `json:"cycles"`
}

// alertRow formats one alert record in column order
func alertRow(record models.AlertRecord) []string {
	return []string{
		record.Time.Format("15:04:05"),
		record.Location,
		strconv.FormatFloat(record.Ph, 'f', 2, 64),
		strconv.FormatFloat(record.Turbidity, 'f', 2, 64),
		strconv.Itoa(record.TDS),
	}
}

// GenerateCSV creates CSV rows for the alert log, header first, in append order
func (es *ExportService) GenerateCSV(alerts []models.AlertRecord) [][]string {
	records := make([][]string, 0, len(alerts)+1)
	records = append(records, append([]string(nil), alertColumns...))

	for _, alert := range alerts {
		records = append(records, alertRow(alert))
	}

	return records
}

// WriteCSV writes the alert log as CSV
func (es *ExportService) WriteCSV(w io.Writer, alerts []models.AlertRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(es.GenerateCSV(alerts)); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// GenerateExcel creates an Excel workbook with the alert report.
// The caller owns the returned file and must close it.
func (es *ExportService) GenerateExcel(data ExportData) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set document properties
	if err := f.SetDocProps(&excelize.DocProperties{
		Category:       "AquaSmart Water Quality",
		Created:        data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Creator:        "AquaSmart Monitor",
		Description:    "Unsafe water alerts and recent sensor trends",
		LastModifiedBy: "AquaSmart Monitor",
		Modified:       data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Subject:        "Water Quality Alert Report",
		Title:          "AquaSmart Alert Report",
		Version:        "1.0",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	steps := []func(*excelize.File, ExportData) error{
		es.createSummarySheet,
		es.createAlertSheet,
		es.createTrendSheet,
	}
	for _, step := range steps {
		if err := step(f, data); err != nil {
			f.Close()
			return nil, err
		}
	}

	// Set active sheet to Summary
	f.SetActiveSheet(0)

	return f, nil
}

// headerStyle creates the bold white-on-color header style
func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
}

// writeHeader writes a styled header row
func writeHeader(f *excelize.File, sheet string, headers []string, color string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	style, err := headerStyle(f, color)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// createSummarySheet creates the summary overview sheet
func (es *ExportService) createSummarySheet(f *excelize.File, data ExportData) error {
	sheetName := "Summary"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1CB5E0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create summary style: %w", err)
	}

	// Title
	f.SetCellValue(sheetName, "A1", "AquaSmart Water Quality Alert Report")
	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellStyle(sheetName, "A1", "D1", style)
	f.SetRowHeight(sheetName, 1, 25)

	// Export metadata
	rows := [][2]interface{}{
		{"Generated At:", data.ExportMetadata.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Location:", data.ExportMetadata.Location},
		{"Monitoring Cycles:", data.ExportMetadata.Cycles},
		{"Unsafe Alerts:", len(data.Alerts)},
		{"Readings In Trend Window:", len(data.History.Ph)},
	}
	for i, row := range rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+3), row[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+3), row[1])
	}

	f.SetColWidth(sheetName, "A", "A", 26)
	f.SetColWidth(sheetName, "B", "D", 20)

	return nil
}

// createAlertSheet creates the alert log sheet
func (es *ExportService) createAlertSheet(f *excelize.File, data ExportData) error {
	sheetName := "Alerts"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create alerts sheet: %w", err)
	}
	if err := writeHeader(f, sheetName, alertColumns, "C00000"); err != nil {
		return fmt.Errorf("failed to write alerts header: %w", err)
	}

	// Data rows
	for i, alert := range data.Alerts {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), alert.Time.Format("15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), alert.Location)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), alert.Ph)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), alert.Turbidity)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), alert.TDS)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, "C", "E", 12)

	return nil
}

// createTrendSheet creates the sheet with the recent readings window
func (es *ExportService) createTrendSheet(f *excelize.File, data ExportData) error {
	sheetName := "Trends"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create trends sheet: %w", err)
	}
	if err := writeHeader(f, sheetName, []string{"#", "pH", "Turbidity (NTU)", "TDS (ppm)"}, "70AD47"); err != nil {
		return fmt.Errorf("failed to write trends header: %w", err)
	}

	for i := range data.History.Ph {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), data.History.Ph[i])
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), data.History.Turbidity[i])
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), data.History.TDS[i])
	}

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "D", 16)

	return nil
}

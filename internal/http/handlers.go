package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/internal/database"
	"github.com/Capstone-E1/aquasmart_monitor/internal/export"
	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/monitor"
	"github.com/Capstone-E1/aquasmart_monitor/internal/services"
	"github.com/Capstone-E1/aquasmart_monitor/internal/simulator"
	"github.com/Capstone-E1/aquasmart_monitor/internal/store"
	"github.com/Capstone-E1/aquasmart_monitor/internal/ws"
	"github.com/go-playground/validator/v10"
)

// Dependencies wires the handlers to the running monitor.
// Scheduler, Hub and Archive are optional.
type Dependencies struct {
	Session   *monitor.Session
	Simulator *simulator.Simulator
	Scheduler *services.Scheduler
	Hub       *ws.Hub
	Archive   store.AlertArchive
	Source    string
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	session       *monitor.Session
	simulator     *simulator.Simulator
	scheduler     *services.Scheduler
	hub           *ws.Hub
	archive       store.AlertArchive
	source        string
	exportService *export.ExportService
	validate      *validator.Validate
}

// NewHandlers creates a new handlers instance
func NewHandlers(deps Dependencies) *Handlers {
	sim := deps.Simulator
	if sim == nil {
		sim = simulator.New()
	}

	return &Handlers{
		session:       deps.Session,
		simulator:     sim,
		scheduler:     deps.Scheduler,
		hub:           deps.Hub,
		archive:       deps.Archive,
		source:        deps.Source,
		exportService: export.NewExportService(),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SystemStats is returned by GET /stats
type SystemStats struct {
	monitor.Stats
	Source           string    `json:"source"`
	RefreshSeconds   int       `json:"refresh_interval_seconds,omitempty"`
	ConnectedClients int       `json:"connected_clients"`
	ArchiveEnabled   bool      `json:"archive_enabled"`
	ServerTime       time.Time `json:"server_time"`
}

// sendJSON writes a successful envelope
func (h *Handlers) sendJSON(w http.ResponseWriter, message string, data interface{}) {
	response := APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// sendErrorResponse sends a standardized error response
func (h *Handlers) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// decode parses and validates a JSON request body
func (h *Handlers) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// GetSystemStats returns session counters and runtime information
func (h *Handlers) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats := SystemStats{
		Stats:          h.session.Stats(),
		Source:         h.source,
		ArchiveEnabled: h.archive != nil,
		ServerTime:     time.Now(),
	}
	if h.scheduler != nil {
		stats.RefreshSeconds = int(h.scheduler.Interval() / time.Second)
	}
	if h.hub != nil {
		stats.ConnectedClients = h.hub.GetConnectedClientsCount()
	}

	h.sendJSON(w, "", stats)
}

// GetStatus returns the latest evaluation
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	eval, ok := h.session.Latest()
	if !ok {
		h.sendErrorResponse(w, "No sensor data available yet", http.StatusNotFound)
		return
	}

	h.sendJSON(w, "", eval)
}

// GetHistory returns the rolling trend window
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, "", h.session.History())
}

// GetAlerts returns the session alert log in append order
func (h *Handlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, "", h.session.Alerts())
}

// AddReading evaluates a manually submitted reading
func (h *Handlers) AddReading(w http.ResponseWriter, r *http.Request) {
	var request models.SensorData
	if err := h.decode(r, &request); err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !request.ValidateReading() {
		h.sendErrorResponse(w, "Invalid sensor reading values", http.StatusBadRequest)
		return
	}

	eval, err := h.session.EvaluateAt(request.ToReading(), request.Location, models.SourceManual)
	if err != nil {
		h.sendErrorResponse(w, fmt.Sprintf("Unknown location %q", request.Location), http.StatusBadRequest)
		return
	}

	h.sendJSON(w, "Reading evaluated", eval)
}

// SimulateContamination runs one contamination cycle immediately
func (h *Handlers) SimulateContamination(w http.ResponseWriter, r *http.Request) {
	eval := h.session.Evaluate(h.simulator.Spike(), models.SourceSpike)
	log.Printf("🧪 Contamination spike simulated at %s", eval.Location)

	h.sendJSON(w, "Contamination spike simulated", eval)
}

// demoRequest toggles manual control; missing values keep the current demo values
type demoRequest struct {
	Enabled   *bool    `json:"enabled" validate:"required"`
	Ph        *float64 `json:"ph" validate:"omitempty,gte=0,lte=14"`
	Turbidity *float64 `json:"turbidity" validate:"omitempty,gte=0,lte=10"`
	TDS       *int     `json:"tds" validate:"omitempty,gte=0,lte=1200"`
}

// GetDemo returns the manual control state
func (h *Handlers) GetDemo(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, "", h.simulator.Demo())
}

// SetDemo enables or disables manual control
func (h *Handlers) SetDemo(w http.ResponseWriter, r *http.Request) {
	var request demoRequest
	if err := h.decode(r, &request); err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !*request.Enabled {
		h.simulator.DisableDemo()
		h.sendJSON(w, "Demo mode disabled", h.simulator.Demo())
		return
	}

	reading := h.simulator.Demo().Reading
	if request.Ph != nil {
		reading.Ph = *request.Ph
	}
	if request.Turbidity != nil {
		reading.Turbidity = *request.Turbidity
	}
	if request.TDS != nil {
		reading.TDS = *request.TDS
	}

	if err := h.simulator.SetDemo(reading); err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.sendJSON(w, "Demo mode enabled", h.simulator.Demo())
}

// locationResponse describes the selectable locations
type locationResponse struct {
	Location  string   `json:"location"`
	Locations []string `json:"locations"`
}

// GetLocation returns the current location and the allowed list
func (h *Handlers) GetLocation(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, "", locationResponse{
		Location:  h.session.Location(),
		Locations: h.session.Locations(),
	})
}

// SetLocation changes the location tag for subsequent cycles
func (h *Handlers) SetLocation(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Location string `json:"location" validate:"required"`
	}
	if err := h.decode(r, &request); err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.session.SetLocation(request.Location); err != nil {
		if errors.Is(err, monitor.ErrUnknownLocation) {
			h.sendErrorResponse(w, fmt.Sprintf("Unknown location %q", request.Location), http.StatusBadRequest)
			return
		}
		h.sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, "Location updated", locationResponse{
		Location:  h.session.Location(),
		Locations: h.session.Locations(),
	})
}

// refreshResponse describes the cycle runner
type refreshResponse struct {
	IntervalSeconds int  `json:"interval_seconds"`
	Running         bool `json:"running"`
}

// GetRefresh returns the refresh interval
func (h *Handlers) GetRefresh(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		h.sendErrorResponse(w, "Refresh interval applies only to the simulator source", http.StatusConflict)
		return
	}

	h.sendJSON(w, "", refreshResponse{
		IntervalSeconds: int(h.scheduler.Interval() / time.Second),
		Running:         h.scheduler.IsRunning(),
	})
}

// SetRefresh changes the refresh interval
func (h *Handlers) SetRefresh(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		h.sendErrorResponse(w, "Refresh interval applies only to the simulator source", http.StatusConflict)
		return
	}

	var request struct {
		IntervalSeconds int `json:"interval_seconds" validate:"required,min=2,max=10"`
	}
	if err := h.decode(r, &request); err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.scheduler.SetInterval(time.Duration(request.IntervalSeconds) * time.Second); err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.sendJSON(w, "Refresh interval updated", refreshResponse{
		IntervalSeconds: int(h.scheduler.Interval() / time.Second),
		Running:         h.scheduler.IsRunning(),
	})
}

// ResetSession clears history and alerts
func (h *Handlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	h.session.Reset()
	h.sendJSON(w, "Session reset", h.session.Stats())
}

// ExportAlertsCSV downloads the alert log as CSV
func (h *Handlers) ExportAlertsCSV(w http.ResponseWriter, r *http.Request) {
	alerts := h.session.Alerts()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.CSVFileName))

	if err := h.exportService.WriteCSV(w, alerts); err != nil {
		log.Printf("❌ Error writing CSV export: %v", err)
	}
}

// ExportAlertsExcel downloads the alert report as an Excel workbook
func (h *Handlers) ExportAlertsExcel(w http.ResponseWriter, r *http.Request) {
	stats := h.session.Stats()
	excelFile, err := h.exportService.GenerateExcel(export.ExportData{
		Alerts:  h.session.Alerts(),
		History: h.session.History(),
		ExportMetadata: export.ExportMetadata{
			GeneratedAt: time.Now(),
			Location:    stats.Location,
			Cycles:      stats.Cycles,
		},
	})
	if err != nil {
		log.Printf("❌ Error generating Excel export: %v", err)
		h.sendErrorResponse(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	defer excelFile.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.ExcelFileName))

	if err := excelFile.Write(w); err != nil {
		log.Printf("❌ Error writing Excel export: %v", err)
	}
}

// GetArchivedAlerts lists alerts from the database archive
func (h *Handlers) GetArchivedAlerts(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.sendErrorResponse(w, store.ErrArchiveDisabled.Error(), http.StatusServiceUnavailable)
		return
	}

	limit := database.DefaultAlertLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			h.sendErrorResponse(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	alerts, err := h.archive.RecentAlerts(r.Context(), limit)
	if err != nil {
		log.Printf("❌ Error reading alert archive: %v", err)
		h.sendErrorResponse(w, "Failed to read alert archive", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, "", alerts)
}

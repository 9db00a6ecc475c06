package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/config"
	"github.com/Capstone-E1/aquasmart_monitor/internal/database"
	httphandlers "github.com/Capstone-E1/aquasmart_monitor/internal/http"
	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/monitor"
	"github.com/Capstone-E1/aquasmart_monitor/internal/mqtt"
	"github.com/Capstone-E1/aquasmart_monitor/internal/services"
	"github.com/Capstone-E1/aquasmart_monitor/internal/simulator"
	"github.com/Capstone-E1/aquasmart_monitor/internal/store"
	"github.com/Capstone-E1/aquasmart_monitor/internal/ws"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.Println("🌊 Starting AquaSmart Water Quality Monitor...")

	// Load configuration (.env first, then environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	log.Printf("📋 Loaded configuration: port=%s, source=%s, location=%s, refresh=%s",
		cfg.Server.Port, cfg.Monitor.Source, cfg.Monitor.Location, cfg.Monitor.RefreshInterval)

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	log.Println("🔌 Started WebSocket hub")

	opts := []monitor.Option{
		monitor.WithHistorySize(cfg.Monitor.HistorySize),
		monitor.WithLocations(cfg.Monitor.Locations...),
		monitor.WithPublisher(wsHub),
	}

	// Optional PostgreSQL alert archive
	var archive store.AlertArchive
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			log.Printf("⚠️  Warning: Failed to connect to database: %v", err)
			log.Println("📱 Continuing without alert archive")
		} else {
			defer db.Close()
			if err := database.CreateTables(db.DB); err != nil {
				log.Fatalf("❌ Failed to run migrations: %v", err)
			}
			alertStore := database.NewAlertStore(db.DB)
			archive = alertStore
			opts = append(opts, monitor.WithAlertSink(alertStore))
			log.Println("💾 Alert archive enabled")
		}
	} else {
		log.Println("💾 Alert archive disabled (DB_ENABLED=false)")
	}

	// Optional MQTT: sensor input when MONITOR_SOURCE=mqtt, alert publishing whenever connected
	var mqttClient *mqtt.Client
	if cfg.MQTTEnabled() {
		client := mqtt.NewClient(cfg.MQTT)
		if err := client.Connect(); err != nil {
			if cfg.Monitor.Source == config.SourceMQTT {
				log.Fatalf("❌ MQTT source selected but broker is unreachable: %v", err)
			}
			log.Printf("⚠️  Warning: Failed to connect to MQTT broker: %v", err)
			log.Println("📡 Continuing without MQTT alert publishing")
		} else {
			mqttClient = client
			defer mqttClient.Disconnect()
			opts = append(opts, monitor.WithAlertSink(monitor.AlertSinkFunc(mqttClient.PublishAlert)))
		}
	} else {
		log.Println("📡 MQTT broker not configured, skipping MQTT initialization")
	}

	session := monitor.NewSession(opts...)
	if err := session.SetLocation(cfg.Monitor.Location); err != nil {
		log.Fatalf("❌ Invalid monitoring location: %v", err)
	}

	sim := simulator.New()

	// The ticker-driven runner only applies to the simulator source
	var scheduler *services.Scheduler
	switch cfg.Monitor.Source {
	case config.SourceMQTT:
		mqttClient.SetDataHandler(func(reading models.Reading, location string) {
			if _, err := session.EvaluateAt(reading, location, models.SourceSensor); err != nil {
				log.Printf("⚠️  Ignoring reading from unknown sensor location %q: %v", location, err)
			}
		})
		mqttClient.SetErrorHandler(func(err error) {
			log.Printf("❌ MQTT error: %v", err)
		})
		if err := mqttClient.SubscribeToSensorData(); err != nil {
			log.Fatalf("❌ Failed to subscribe to sensor data: %v", err)
		}
		log.Println("📡 Evaluating readings from MQTT sensors")
	default:
		scheduler = services.NewScheduler(session, sim, cfg.Monitor.RefreshInterval)
	}

	// Setup HTTP routes
	router := httphandlers.SetupRoutes(httphandlers.Dependencies{
		Session:   session,
		Simulator: sim,
		Scheduler: scheduler,
		Hub:       wsHub,
		Archive:   archive,
		Source:    cfg.Monitor.Source,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	if scheduler != nil {
		g.Go(func() error {
			scheduler.Start()
			<-gCtx.Done()
			scheduler.Stop()
			return nil
		})
	}

	g.Go(func() error {
		log.Printf("🚀 Starting HTTP server on port %s", cfg.Server.Port)
		log.Println("📡 API endpoints available:")
		log.Println("  GET /api/v1/stats - Session statistics")
		log.Println("  GET /api/v1/status - Latest evaluation")
		log.Println("  GET /api/v1/history - Last readings for trend charts")
		log.Println("  GET /api/v1/alerts - Unsafe water alert log")
		log.Println("  POST /api/v1/readings - Evaluate a manual reading")
		log.Println("  POST /api/v1/simulate/contamination - Simulate a contamination spike")
		log.Println("  GET|PUT /api/v1/demo - Manual control mode")
		log.Println("  GET|PUT /api/v1/location - Monitoring location")
		log.Println("  GET|PUT /api/v1/refresh - Refresh interval")
		log.Println("  POST /api/v1/session/reset - Reset the session")
		log.Println("  GET /api/v1/export/alerts.csv - Alert report (CSV)")
		log.Println("  GET /api/v1/export/alerts.xlsx - Alert report (Excel)")
		log.Println("  GET /api/v1/archive/alerts - Archived alerts")
		log.Println("  WS /ws - WebSocket for real-time updates")
		log.Printf("🌐 Server running at http://localhost:%s", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("🛑 Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	log.Println("✅ Server exited gracefully")
}

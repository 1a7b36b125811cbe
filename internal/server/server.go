package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avrhub/avr-hub-go/internal/api"
	"github.com/avrhub/avr-hub-go/internal/audit"
	"github.com/avrhub/avr-hub-go/internal/auth"
	"github.com/avrhub/avr-hub-go/internal/avr"
	"github.com/avrhub/avr-hub-go/internal/config"
	"github.com/avrhub/avr-hub-go/internal/db"
	"github.com/avrhub/avr-hub-go/internal/events"
	"github.com/avrhub/avr-hub-go/internal/scheduler"
	"github.com/avrhub/avr-hub-go/internal/simulator"
	"github.com/avrhub/avr-hub-go/internal/system"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs all incoming HTTP requests
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, wrapped.status, time.Since(start).Round(time.Millisecond))
	})
}

// Options controls server wiring.
type Options struct {
	// Session overrides the device session, used by tests. Nil selects by
	// configuration.
	Session avr.DeviceSession
	// DisableScheduler skips the cron loop, used by tests.
	DisableScheduler bool
}

// NewHandler builds the HTTP handler and returns a shutdown function.
func NewHandler(cfg config.Config, options Options) (http.Handler, func(context.Context) error, error) {
	log.Printf("Using database: %s", cfg.SQLiteDBPath)
	dbPair, err := db.Init(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(requestLoggerMiddleware)
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware)
	router.Use(auth.Middleware(cfg))

	auth.RegisterRoutes(router, cfg)

	var sources *avr.SourceTable
	if cfg.SourceTablePath != "" {
		sources, err = avr.LoadSourceTable(cfg.SourceTablePath)
		if err != nil {
			dbPair.Close()
			return nil, nil, fmt.Errorf("load source table: %w", err)
		}
	}

	zones := make([]avr.ZoneID, 0, len(cfg.Zones))
	for _, z := range cfg.Zones {
		zones = append(zones, avr.ZoneID(z))
	}

	session := options.Session
	var sim *simulator.Session
	if session == nil {
		if cfg.DeviceAddr != "" {
			// TODO: implement the TCP control-channel session for real
			// receivers; until then only the simulator is bundled.
			dbPair.Close()
			return nil, nil, fmt.Errorf("network session for %s not implemented; unset AVR_DEVICE_ADDR to use the simulator", cfg.DeviceAddr)
		}
		log.Printf("AVR_DEVICE_ADDR not set; using simulated device (drop rate %.2f)", cfg.SimDropRate)
		sim = simulator.New(zones, cfg.SimDropRate, time.Now().UnixNano(), nil)
		session = sim
	}

	store := avr.NewStateStore(zones)
	exec := avr.NewExecutor(nil, cfg.CommandMaxAttempts, time.Duration(cfg.CommandRetryDelayMs)*time.Millisecond)
	recon := avr.NewReconciler(session, store, nil)
	opts := avr.Options{
		AutoQueryDisabled: cfg.DisableAutoQuery,
		VolumeStepOnly:    cfg.VolumeStepOnly,
	}
	controller := avr.NewController(session, store, exec, recon, opts, nil)

	auditService := audit.NewService(dbPair, nil)
	controller.SetRecorder(audit.NewCommandLogger(auditService))
	audit.RegisterRoutes(router, auditService)

	avr.RegisterRoutes(router, controller, sources)

	hub := events.NewHub(controller, sources, store, nil)
	go hub.Run()
	events.RegisterRoutes(router, hub)

	if sim != nil {
		// Accepted commands push fresh reports instead of waiting out the
		// cadence tick.
		sim.SetUpdateHook(func() {
			if err := recon.Refresh(context.Background()); err != nil {
				log.Printf("push refresh failed: %v", err)
			}
		})
	}

	runner := scheduler.NewRunner(nil, controller, auditService, time.Duration(cfg.RefreshIntervalSec)*time.Second)
	if !options.DisableScheduler {
		if err := runner.Start(); err != nil {
			dbPair.Close()
			return nil, nil, err
		}
	}

	systemService := system.NewService(cfg, dbPair, nil, controller, runner, hub)
	system.RegisterRoutes(router, systemService)

	if _, err := auditService.RecordEvent(audit.WriteEventInput{
		Type:    string(audit.EventSystemStartup),
		Message: "hub started",
	}); err != nil {
		log.Printf("Failed to record startup event: %v", err)
	}

	shutdown := func(_ context.Context) error {
		if !options.DisableScheduler {
			runner.Stop()
		}
		hub.Close()
		return dbPair.Close()
	}

	return router, shutdown, nil
}

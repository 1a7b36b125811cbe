package system

import (
	"database/sql"
	"log"
	"runtime"
	"time"

	"github.com/avrhub/avr-hub-go/internal/avr"
	"github.com/avrhub/avr-hub-go/internal/config"
)

// Version is the hub version, set at build time or defaulted.
var Version = "1.0.0"

// RefreshStatusProvider reports the scheduler's refresh health.
type RefreshStatusProvider interface {
	LastRefresh() (time.Time, error)
}

// StreamStatusProvider reports websocket stream clients.
type StreamStatusProvider interface {
	ClientCount() int
}

// DBPair interface for dependency injection (matches db.DBPair).
type DBPair interface {
	Reader() *sql.DB
	Writer() *sql.DB
}

// Service provides system information.
// Uses the reader connection only as this service only performs SELECT queries.
type Service struct {
	cfg       config.Config
	logger    *log.Logger
	reader    *sql.DB
	ctrl      *avr.Controller
	refresh   RefreshStatusProvider
	stream    StreamStatusProvider
	startTime time.Time
}

// NewService creates a new system service.
func NewService(cfg config.Config, dbPair DBPair, logger *log.Logger, ctrl *avr.Controller, refresh RefreshStatusProvider, stream StreamStatusProvider) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		cfg:       cfg,
		logger:    logger,
		reader:    dbPair.Reader(),
		ctrl:      ctrl,
		refresh:   refresh,
		stream:    stream,
		startTime: time.Now(),
	}
}

// SystemInfo holds system information for the info endpoint.
type SystemInfo struct {
	HubVersion      string     `json:"hub_version"`
	Uptime          int64      `json:"uptime_seconds"`
	MemoryUsageMB   float64    `json:"memory_mb"`
	SQLiteConnected bool       `json:"sqlite_connected"`
	DeviceAvailable bool       `json:"device_available"`
	DeviceSimulated bool       `json:"device_simulated"`
	ZonesTotal      int        `json:"zones_total"`
	ZonesAvailable  int        `json:"zones_available"`
	StreamClients   int        `json:"stream_clients"`
	LastRefreshAt   *time.Time `json:"last_refresh_at,omitempty"`
	LastRefreshOK   bool       `json:"last_refresh_ok"`
}

// GetSystemInfo returns current system information.
func (s *Service) GetSystemInfo() (*SystemInfo, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sqliteConnected := true
	if err := s.reader.Ping(); err != nil {
		sqliteConnected = false
	}

	zones := s.ctrl.Zones()
	zonesAvailable := 0
	for _, zone := range zones {
		if s.ctrl.ZoneAvailable(zone) {
			zonesAvailable++
		}
	}

	info := &SystemInfo{
		HubVersion:      Version,
		Uptime:          int64(time.Since(s.startTime).Seconds()),
		MemoryUsageMB:   float64(memStats.Alloc) / 1024 / 1024,
		SQLiteConnected: sqliteConnected,
		DeviceAvailable: s.ctrl.Available(),
		DeviceSimulated: s.cfg.DeviceAddr == "",
		ZonesTotal:      len(zones),
		ZonesAvailable:  zonesAvailable,
		LastRefreshOK:   true,
	}

	if s.stream != nil {
		info.StreamClients = s.stream.ClientCount()
	}
	if s.refresh != nil {
		at, err := s.refresh.LastRefresh()
		if !at.IsZero() {
			info.LastRefreshAt = &at
		}
		info.LastRefreshOK = err == nil
	}

	return info, nil
}

// Healthy reports whether the hub can serve requests: the database must
// answer and the last refresh attempt must have succeeded. An unavailable
// device degrades but does not fail health; the hub still serves cached
// state.
func (s *Service) Healthy() (bool, string) {
	if err := s.reader.Ping(); err != nil {
		return false, "database unreachable"
	}
	if s.refresh != nil {
		if _, err := s.refresh.LastRefresh(); err != nil {
			return true, "degraded: last refresh failed"
		}
	}
	if !s.ctrl.Available() {
		return true, "degraded: device unavailable"
	}
	return true, "healthy"
}

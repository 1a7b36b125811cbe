package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the base server configuration.
type Config struct {
	Host         string
	Port         string
	SQLiteDBPath string
	AppEnv       string
	// AllowTestMode permits the x-test-mode auth bypass in development.
	AllowTestMode            bool
	JWTSecret                string
	JWTAccessTokenExpirySec  int
	JWTRefreshTokenExpirySec int
	// PairingKey is the shared secret clients present to obtain a token pair.
	PairingKey string

	// DeviceAddr is the receiver's control endpoint (host:port). Empty
	// selects the simulated session.
	DeviceAddr string
	// Zones lists the receiver's zone IDs.
	Zones []string
	// CommandMaxAttempts is the total tries for retried commands.
	CommandMaxAttempts int
	// CommandRetryDelayMs is the pause between attempts.
	CommandRetryDelayMs int
	// RefreshIntervalSec is the reconciliation cadence.
	RefreshIntervalSec int
	// DisableAutoQuery mirrors the receiver's disable-auto-query setting;
	// it withholds sound mode selection even on the main zone.
	DisableAutoQuery bool
	// VolumeStepOnly marks receivers that only accept stepwise volume
	// changes; set_volume is then issued single-shot.
	VolumeStepOnly bool
	// SimDropRate is the simulated session's command drop probability,
	// 0..1. Useful for exercising the retry path in development.
	SimDropRate float64
	// SourceTablePath points at the optional YAML source-name table.
	SourceTablePath string
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	cfg := Config{
		Host:                     envString("HOST", "0.0.0.0"),
		Port:                     envString("PORT", "9000"),
		SQLiteDBPath:             envString("SQLITE_DB_PATH", "./data/avr-hub.db"),
		AppEnv:                   envString("APP_ENV", "development"),
		AllowTestMode:            envBool("ALLOW_TEST_MODE", false),
		JWTSecret:                envString("JWT_SECRET", ""),
		JWTAccessTokenExpirySec:  envInt("JWT_ACCESS_TOKEN_EXPIRY", 3600),
		JWTRefreshTokenExpirySec: envInt("JWT_REFRESH_TOKEN_EXPIRY", 2592000),
		PairingKey:               envString("HUB_PAIRING_KEY", ""),
		DeviceAddr:               envString("AVR_DEVICE_ADDR", ""),
		Zones:                    envCSV("AVR_ZONES"),
		CommandMaxAttempts:       envInt("AVR_COMMAND_MAX_ATTEMPTS", 4),
		CommandRetryDelayMs:      envInt("AVR_COMMAND_RETRY_DELAY_MS", 1000),
		RefreshIntervalSec:       envInt("AVR_REFRESH_INTERVAL_SEC", 10),
		DisableAutoQuery:         envBool("AVR_DISABLE_AUTO_QUERY", false),
		VolumeStepOnly:           envBool("AVR_VOLUME_STEP_ONLY", false),
		SimDropRate:              envFloat("AVR_SIM_DROP_RATE", 0),
		SourceTablePath:          envString("SOURCE_TABLE_PATH", ""),
	}

	if len(cfg.Zones) == 0 {
		cfg.Zones = []string{"1", "2", "3", "Z"}
	}

	if len(strings.TrimSpace(cfg.JWTSecret)) < 32 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if cfg.CommandMaxAttempts < 1 {
		return Config{}, fmt.Errorf("AVR_COMMAND_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.RefreshIntervalSec < 1 {
		return Config{}, fmt.Errorf("AVR_REFRESH_INTERVAL_SEC must be at least 1")
	}
	if cfg.SimDropRate < 0 || cfg.SimDropRate >= 1 {
		return Config{}, fmt.Errorf("AVR_SIM_DROP_RATE must be in [0, 1)")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.EqualFold(val, "true")
}

func envCSV(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return []string{}
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

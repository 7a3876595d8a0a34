package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bringolino/bringolino/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                        string
	ServiceName                   string
	ServiceVersion                string
	HTTPAddr                      string
	DBURL                         string
	DBDisablePreparedBinaryResult bool
	IdentityPath                  string
	CacheEnabled                  bool
	CacheTTL                      time.Duration
	CORSAllowedOrigins            []string
	ReadTimeout                   time.Duration
	WriteTimeout                  time.Duration

	SyncProbeTimeout    time.Duration
	SyncMonitorInterval time.Duration
	SyncMaxAttempts     int
	SyncBackoffBase     time.Duration
	SyncBackoffCap      time.Duration

	StoreCircuitEnabled        bool
	StoreCircuitFailureCount   int
	StoreCircuitOpenTimeout    time.Duration
	StoreCircuitHalfOpenMaxReq int

	RealtimeEnabled bool

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := getEnvAsDuration("CACHE_TTL", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}

	readTimeout, err := getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	probeTimeout, err := getEnvAsDuration("SYNC_PROBE_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_PROBE_TIMEOUT: %w", err)
	}
	monitorInterval, err := getEnvAsDuration("SYNC_MONITOR_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_MONITOR_INTERVAL: %w", err)
	}
	maxAttempts, err := getEnvAsInt("SYNC_MAX_ATTEMPTS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_MAX_ATTEMPTS: %w", err)
	}
	backoffBase, err := getEnvAsDuration("SYNC_BACKOFF_BASE", 2*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_BACKOFF_BASE: %w", err)
	}
	backoffCap, err := getEnvAsDuration("SYNC_BACKOFF_CAP", 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_BACKOFF_CAP: %w", err)
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("STORE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("STORE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenTimeout, err := getEnvAsDuration("STORE_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("STORE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	dbDisablePreparedBinaryResult, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	realtimeEnabled, err := strconv.ParseBool(getEnv("REALTIME_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REALTIME_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	return Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("SERVICE_NAME", "bringolino"),
		ServiceVersion:                getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("HTTP_ADDR", ":8080"),
		DBURL:                         strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinaryResult: dbDisablePreparedBinaryResult,
		IdentityPath:                  strings.TrimSpace(getEnv("IDENTITY_PATH", "")),
		CacheEnabled:                  cacheEnabled,
		CacheTTL:                      cacheTTL,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,

		SyncProbeTimeout:    probeTimeout,
		SyncMonitorInterval: monitorInterval,
		SyncMaxAttempts:     maxAttempts,
		SyncBackoffBase:     backoffBase,
		SyncBackoffCap:      backoffCap,

		StoreCircuitEnabled:        circuitEnabled,
		StoreCircuitFailureCount:   circuitFailureCount,
		StoreCircuitOpenTimeout:    circuitOpenTimeout,
		StoreCircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,

		RealtimeEnabled: realtimeEnabled,

		PprofEnabled: pprofEnabled,
		PprofAddr:    getEnv("PPROF_ADDR", "localhost:6060"),

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		LogLevel: logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

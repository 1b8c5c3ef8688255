package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every tunable of the monitoring server. Values come from
// the environment, with a .env file honored in development.
type Config struct {
	// Application
	Version     string
	Environment string
	ServerID    string
	Port        int
	LogLevel    string

	// Log sinks
	LogFile           string // empty disables the rotating file sink
	LogFileMaxSizeMB  int
	LogFileMaxBackups int

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Cameras: comma-separated "id=source" pairs. Source is a device
	// index or a stream URL. Ignored in demo mode.
	Cameras    string
	CaptureFPS int

	// Demo mode runs synthetic frame sources instead of real cameras.
	DemoMode             bool
	SyntheticInterval    time.Duration
	SyntheticMotionEvery int

	// Classification
	Classifier      string // "motion" or "remote"
	MotionThreshold float64
	ClassifyTimeout time.Duration
	AnalyzeURL      string // base URL of the remote analysis service

	// Live feed
	FeedDefaultBacklog int
	FeedMaxBacklog     int

	// Alert store
	AlertStorePath string // empty disables persistence

	// NATS alert emission
	NatsURL            string // empty disables NATS
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	AlertsSubject      string
	AlertsCooldown     time.Duration

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerID:    getEnv("SERVER_ID", "vigil-1"),
		Port:        getEnvInt("PORT", 5000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		LogFile:           getEnv("LOG_FILE", ""),
		LogFileMaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 50),
		LogFileMaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 3),

		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8081),

		Cameras:    getEnv("CAMERAS", "default=0"),
		CaptureFPS: getEnvInt("CAPTURE_FPS", 15),

		DemoMode:             getEnvBool("DEMO_MODE", false),
		SyntheticInterval:    getEnvDuration("SYNTHETIC_INTERVAL", 66*time.Millisecond),
		SyntheticMotionEvery: getEnvInt("SYNTHETIC_MOTION_EVERY", 30),

		Classifier:      getEnv("CLASSIFIER", "motion"),
		MotionThreshold: getEnvFloat("MOTION_THRESHOLD", 0.12),
		ClassifyTimeout: getEnvDuration("CLASSIFY_TIMEOUT", 500*time.Millisecond),
		AnalyzeURL:      getEnv("ANALYZE_URL", "http://localhost:5001"),

		FeedDefaultBacklog: getEnvInt("FEED_DEFAULT_BACKLOG", 16),
		FeedMaxBacklog:     getEnvInt("FEED_MAX_BACKLOG", 256),

		AlertStorePath: getEnv("ALERT_STORE_PATH", "vigil_alerts.db"),

		NatsURL:            getEnv("NATS_URL", ""),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 5*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", 10),
		AlertsSubject:      getEnv("ALERTS_SUBJECT", "vigil.alerts"),
		AlertsCooldown:     getEnvDuration("ALERTS_COOLDOWN", 10*time.Second),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// CameraSources parses the Cameras value into id -> source pairs.
// Malformed entries are skipped with a warning.
func (c *Config) CameraSources() map[string]string {
	out := map[string]string{}
	for _, entry := range strings.Split(c.Cameras, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, source, ok := strings.Cut(entry, "=")
		if !ok || id == "" || source == "" {
			log.Warn().Str("entry", entry).Msg("Skipping malformed camera entry")
			continue
		}
		out[strings.TrimSpace(id)] = strings.TrimSpace(source)
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

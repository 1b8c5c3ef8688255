package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"vigil-server/internal/config"
)

// Setup configures the global zerolog logger: console output, optional
// rotating file sink, optional Logdy tee. Returns the Logdy UI URL when
// enabled.
func Setup(cfg *config.Config) string {
	zerolog.TimeFieldFormat = time.RFC3339

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}

	if cfg.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackups,
			Compress:   true,
		})
	}

	var logdyURL string
	if cfg.LogdyEnabled {
		w, url, err := StartLogdy(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to start Logdy, continuing without it")
		} else {
			writers = append(writers, w)
			logdyURL = url
		}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Str("server_id", cfg.ServerID).Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return logdyURL
}

// NewServiceLogger returns a child logger tagged with the service name.
func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("service", service).Logger()
}

// WithCamera tags a logger with the camera id.
func WithCamera(base zerolog.Logger, cameraID string) zerolog.Logger {
	return base.With().Str("camera_id", cameraID).Logger()
}

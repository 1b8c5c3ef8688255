package alerting

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/config"
	"vigil-server/internal/models"
)

// Publisher emits alert records to NATS so an external store or
// notifier can act on them. Emission is fire-and-forget; a broker
// outage never blocks the pipeline. A per-camera cooldown suppresses
// alert storms.
type Publisher struct {
	conn    *nats.Conn
	subject string
	log     zerolog.Logger

	cooldown   time.Duration
	cooldownMu sync.Mutex
	lastSent   map[string]time.Time
}

// NewPublisher connects to NATS with the usual reconnect
// options. Returns an error when the broker is unreachable at startup.
func NewPublisher(cfg *config.Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("vigil-server"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.NatsURL).Str("subject", cfg.AlertsSubject).Msg("NATS connection established")

	return &Publisher{
		conn:     conn,
		subject:  cfg.AlertsSubject,
		cooldown: cfg.AlertsCooldown,
		lastSent: make(map[string]time.Time),
		log:      log.With().Str("component", "alerting").Logger(),
	}, nil
}

// Emit publishes one alert record, respecting the per-camera cooldown.
// Never blocks and never fails the caller.
func (p *Publisher) Emit(record models.AlertRecord) {
	if !p.shouldSend(record.CameraID) {
		p.log.Debug().
			Str("camera_id", record.CameraID).
			Uint64("alert_id", record.AlertID).
			Msg("Alert suppressed by cooldown")
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to encode alert record")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.log.Warn().Err(err).
			Str("camera_id", record.CameraID).
			Uint64("alert_id", record.AlertID).
			Msg("Failed to publish alert to NATS")
		return
	}

	p.log.Info().
		Str("camera_id", record.CameraID).
		Uint64("alert_id", record.AlertID).
		Float64("confidence", record.Result.Confidence).
		Msg("Alert published")
}

func (p *Publisher) shouldSend(cameraID string) bool {
	p.cooldownMu.Lock()
	defer p.cooldownMu.Unlock()

	now := time.Now()
	if last, ok := p.lastSent[cameraID]; ok && now.Sub(last) < p.cooldown {
		return false
	}
	p.lastSent[cameraID] = now
	return true
}

// IsConnected reports broker health for the status endpoints.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Shutdown drains the connection, falling back to an immediate close.
func (p *Publisher) Shutdown(ctx context.Context) error {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
			p.conn.Close()
		}
	}
	return nil
}

// Nop is the sink used when NATS is not configured.
type Nop struct{}

func (Nop) Emit(models.AlertRecord) {}

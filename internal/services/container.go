package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"vigil-server/internal/alerting"
	"vigil-server/internal/analytics"
	"vigil-server/internal/broadcast"
	"vigil-server/internal/capture"
	"vigil-server/internal/classify"
	"vigil-server/internal/config"
	"vigil-server/internal/models"
	"vigil-server/internal/monitor"
	"vigil-server/internal/pipeline"
	"vigil-server/internal/store"
)

// ServiceContainer holds every service of the monitoring server and
// wires the state machine's side effects to them.
type ServiceContainer struct {
	Config     *config.Config
	Machine    *monitor.Machine
	Analytics  *analytics.Aggregator
	Hub        *broadcast.Hub
	Pipeline   *pipeline.Pipeline
	AlertStore store.AlertStore

	natsPublisher *alerting.Publisher
}

// NewServiceContainer builds the full pipeline from configuration.
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	machine := monitor.NewMachine()
	agg := analytics.NewAggregator(machine)
	hub := broadcast.NewHub()

	var alertStore store.AlertStore = store.Nop{}
	if cfg.AlertStorePath != "" {
		s, err := store.NewSQLite(cfg.AlertStorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open alert store: %w", err)
		}
		alertStore = s
	}

	var sink models.AlertSink = alerting.Nop{}
	var natsPublisher *alerting.Publisher
	if cfg.NatsURL != "" {
		p, err := alerting.NewPublisher(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect alert publisher: %w", err)
		}
		sink = p
		natsPublisher = p
	}

	classifier, err := buildClassifier(cfg)
	if err != nil {
		return nil, err
	}

	pipe := pipeline.New(classifier, agg, hub, alertStore, sink)
	if err := registerSources(cfg, pipe); err != nil {
		return nil, err
	}

	// State machine side effects: starting monitoring opens the frame
	// sources, stopping closes them, destruction additionally tears
	// down every viewer session and wipes the alert store.
	machine.OnStart(func() {
		if err := pipe.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start pipeline")
		}
	})
	machine.OnStop(pipe.Stop)
	machine.OnDestroy(func() {
		pipe.Stop()
		hub.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := alertStore.Purge(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to purge alert store during self-destruct")
		}
	})

	return &ServiceContainer{
		Config:        cfg,
		Machine:       machine,
		Analytics:     agg,
		Hub:           hub,
		Pipeline:      pipe,
		AlertStore:    alertStore,
		natsPublisher: natsPublisher,
	}, nil
}

// AlertingConnected reports broker health for the status endpoints.
func (sc *ServiceContainer) AlertingConnected() bool {
	return sc.natsPublisher != nil && sc.natsPublisher.IsConnected()
}

// Shutdown gracefully stops all services. Process shutdown, not
// self-destruct: nothing is erased.
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.Pipeline.Stop()
	sc.Hub.CloseAll()

	if sc.natsPublisher != nil {
		if err := sc.natsPublisher.Shutdown(ctx); err != nil {
			return err
		}
	}
	return sc.AlertStore.Close()
}

func buildClassifier(cfg *config.Config) (classify.Classifier, error) {
	var inner classify.Classifier
	switch cfg.Classifier {
	case "motion", "":
		inner = classify.NewMotionDelta(cfg.MotionThreshold)
	case "remote":
		inner = classify.NewRemote(cfg.AnalyzeURL, cfg.ClassifyTimeout*2)
	default:
		return nil, fmt.Errorf("unknown classifier %q", cfg.Classifier)
	}
	return classify.NewTimed(inner, cfg.ClassifyTimeout), nil
}

func registerSources(cfg *config.Config, pipe *pipeline.Pipeline) error {
	for id, source := range cfg.CameraSources() {
		id, source := id, source
		var desc string
		var factory pipeline.SourceFactory
		if cfg.DemoMode {
			desc = "synthetic"
			factory = func() capture.Source {
				return capture.NewSynthetic(id, cfg.SyntheticInterval, uint64(cfg.SyntheticMotionEvery))
			}
		} else {
			desc = source
			factory = func() capture.Source {
				return capture.NewOpenCV(id, source, cfg.CaptureFPS)
			}
		}
		if err := pipe.AddCamera(id, desc, factory); err != nil {
			return fmt.Errorf("failed to register camera %s: %w", id, err)
		}
	}
	return nil
}

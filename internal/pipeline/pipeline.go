package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/analytics"
	"vigil-server/internal/broadcast"
	"vigil-server/internal/capture"
	"vigil-server/internal/classify"
	"vigil-server/internal/models"
	"vigil-server/internal/store"
)

var (
	// ErrCameraExists is returned when registering a duplicate camera id.
	ErrCameraExists = errors.New("pipeline: camera already registered")

	// ErrAlreadyRunning is returned by Start while the pipeline runs.
	ErrAlreadyRunning = errors.New("pipeline: already running")
)

// SourceFactory builds a fresh frame source for one monitoring run.
// Sources are one-shot; every Start gets new ones so that stop/start
// cycles work.
type SourceFactory func() capture.Source

// Pipeline drives one ingestion loop per camera: frames are checked for
// per-camera ordering, classified within a bounded budget, folded into
// the analytics counters and fanned out to viewers. Cameras do not
// block each other; classification runs in-line per camera so results
// reach the aggregator and broadcaster in frame order.
type Pipeline struct {
	classifier classify.Classifier
	agg        *analytics.Aggregator
	hub        *broadcast.Hub
	alerts     store.AlertStore
	sink       models.AlertSink
	log        zerolog.Logger

	mu      sync.Mutex
	cameras map[string]*cameraRun
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type cameraRun struct {
	desc    string
	factory SourceFactory

	mu          sync.Mutex
	source      capture.Source
	lastSeq     uint64
	lastFrameAt time.Time
	active      bool
}

// New assembles a pipeline. The classifier is expected to already be
// wrapped with the timeout guard.
func New(classifier classify.Classifier, agg *analytics.Aggregator, hub *broadcast.Hub, alerts store.AlertStore, sink models.AlertSink) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		agg:        agg,
		hub:        hub,
		alerts:     alerts,
		sink:       sink,
		cameras:    make(map[string]*cameraRun),
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// AddCamera registers a camera by id with a factory for its frame
// source. desc is a human-readable description of the source for the
// status endpoints.
func (p *Pipeline) AddCamera(id, desc string, factory SourceFactory) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.cameras[id]; exists {
		return ErrCameraExists
	}
	p.cameras[id] = &cameraRun{desc: desc, factory: factory}
	return nil
}

// Start builds and opens a source for every camera and launches its
// ingestion loop. A source that fails to open is logged and skipped;
// the others still run.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}
	p.running = true

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for id, run := range p.cameras {
		src := run.factory()
		if err := src.Start(ctx); err != nil {
			p.log.Error().Err(err).Str("camera_id", id).Msg("Failed to start frame source")
			continue
		}

		run.mu.Lock()
		run.source = src
		run.active = true
		// Sources restart their sequence numbering on each run.
		run.lastSeq = 0
		run.mu.Unlock()

		p.wg.Add(1)
		go p.ingest(ctx, id, run, src)
	}

	p.log.Info().Int("cameras", len(p.cameras)).Msg("Pipeline started")
	return nil
}

// Stop signals every source to stop delivering frames and waits for the
// ingestion loops to drain. Safe to call when not running.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.cancel = nil
	sources := make([]capture.Source, 0, len(p.cameras))
	for _, run := range p.cameras {
		run.mu.Lock()
		if run.source != nil {
			sources = append(sources, run.source)
			run.source = nil
		}
		run.mu.Unlock()
	}
	p.mu.Unlock()

	cancel()
	for _, src := range sources {
		src.Stop()
	}
	p.wg.Wait()

	p.log.Info().Msg("Pipeline stopped")
}

// Running reports whether ingestion loops are live.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Status describes every registered camera for the control surface.
func (p *Pipeline) Status() []models.CameraStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.CameraStatus, 0, len(p.cameras))
	for id, run := range p.cameras {
		run.mu.Lock()
		out = append(out, models.CameraStatus{
			CameraID:      id,
			Source:        run.desc,
			Active:        run.active,
			LastSequence:  run.lastSeq,
			LastFrameTime: run.lastFrameAt,
		})
		run.mu.Unlock()
	}
	return out
}

func (p *Pipeline) ingest(ctx context.Context, id string, run *cameraRun, src capture.Source) {
	defer p.wg.Done()
	defer run.setActive(false)

	logger := p.log.With().Str("camera_id", id).Logger()
	var prev *models.Frame

	for frame := range src.Frames() {
		run.mu.Lock()
		if frame.Sequence <= run.lastSeq {
			run.mu.Unlock()
			p.agg.RecordRejected(id)
			continue
		}
		run.lastSeq = frame.Sequence
		run.lastFrameAt = frame.Timestamp
		run.mu.Unlock()

		res, err := p.classifier.Classify(ctx, frame, prev)
		if err != nil {
			// The timeout wrapper degrades instead of erroring; any
			// residual error still must not stop ingestion.
			logger.Error().Err(err).Uint64("sequence", frame.Sequence).Msg("Classifier error")
			res = models.ClassificationResult{CameraID: id, Sequence: frame.Sequence, Degraded: true}
		}

		rec := p.agg.Record(res)
		p.hub.Publish(frame)

		if rec != nil {
			p.hub.PublishAlert(*rec)
			p.sink.Emit(*rec)
			if err := p.alerts.Save(ctx, *rec); err != nil {
				logger.Warn().Err(err).Uint64("alert_id", rec.AlertID).Msg("Failed to persist alert")
			}
		}

		f := frame
		prev = &f
	}

	logger.Info().Msg("Ingestion loop finished")
}

func (r *cameraRun) setActive(v bool) {
	r.mu.Lock()
	r.active = v
	r.mu.Unlock()
}

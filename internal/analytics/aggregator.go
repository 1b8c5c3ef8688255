package analytics

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
	"vigil-server/internal/monitor"
)

// ErrInvalidOperation is returned when a reset is attempted while the
// system is not idle.
var ErrInvalidOperation = errors.New("analytics: operation not allowed in current state")

type cameraState struct {
	frames      uint64
	alerts      uint64
	nextAlertID uint64
}

// Aggregator accumulates the monitoring counters. All mutation is
// serialized under one mutex; Snapshot never observes a partial update.
type Aggregator struct {
	machine *monitor.Machine
	log     zerolog.Logger

	mu       sync.Mutex
	frames   uint64
	alerts   uint64
	degraded uint64
	rejected uint64
	cameras  map[string]*cameraState
}

// NewAggregator wires the aggregator to the state machine that gates
// destructive operations.
func NewAggregator(machine *monitor.Machine) *Aggregator {
	return &Aggregator{
		machine: machine,
		log:     log.With().Str("component", "analytics").Logger(),
		cameras: map[string]*cameraState{},
	}
}

// Record folds one classification result into the counters. When the
// result is an alert it returns the constructed AlertRecord, with an
// alert id monotonically increasing per camera; otherwise nil.
func (a *Aggregator) Record(res models.ClassificationResult) *models.AlertRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	cam := a.cameras[res.CameraID]
	if cam == nil {
		cam = &cameraState{nextAlertID: 1}
		a.cameras[res.CameraID] = cam
	}

	a.frames++
	cam.frames++
	if res.Degraded {
		a.degraded++
	}

	if !res.IsAlert {
		return nil
	}

	a.alerts++
	cam.alerts++
	rec := &models.AlertRecord{
		AlertID:   cam.nextAlertID,
		CameraID:  res.CameraID,
		Timestamp: time.Now(),
		Result:    res,
	}
	cam.nextAlertID++
	return rec
}

// RecordRejected counts a frame refused for being out of order. Rejected
// frames never reach the processed counters.
func (a *Aggregator) RecordRejected(cameraID string) {
	a.mu.Lock()
	a.rejected++
	a.mu.Unlock()
	a.log.Debug().Str("camera_id", cameraID).Msg("Out-of-order frame rejected")
}

// Snapshot returns a point-in-time consistent view of every counter.
func (a *Aggregator) Snapshot() models.AnalyticsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := models.AnalyticsSnapshot{
		TotalFramesProcessed:    a.frames,
		TotalAlertsRaised:       a.alerts,
		DegradedClassifications: a.degraded,
		RejectedFrames:          a.rejected,
		PerCamera:               make(map[string]models.CameraCounts, len(a.cameras)),
		TakenAt:                 time.Now(),
	}
	if a.frames > 0 {
		snap.AlertRate = float64(a.alerts) / float64(a.frames)
	}
	for id, cam := range a.cameras {
		snap.PerCamera[id] = models.CameraCounts{Frames: cam.frames, Alerts: cam.alerts}
	}
	return snap
}

// Reset zeroes every counter. Only permitted while the system is idle;
// per-camera alert ids keep increasing so record identity stays unique.
func (a *Aggregator) Reset() error {
	if a.machine.State() != monitor.StateIdle {
		return ErrInvalidOperation
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.frames = 0
	a.alerts = 0
	a.degraded = 0
	a.rejected = 0
	for _, cam := range a.cameras {
		cam.frames = 0
		cam.alerts = 0
	}
	a.log.Info().Msg("Analytics counters reset")
	return nil
}

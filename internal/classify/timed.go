package classify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
)

// ErrClassificationTimeout marks a classification that exceeded its
// budget. The Timed wrapper handles it internally; it never surfaces to
// the pipeline as a hard failure.
var ErrClassificationTimeout = errors.New("classify: classification timed out")

// Timed enforces a bounded time budget around an inner classifier. A
// classification that runs over budget, or that fails, degrades to a
// non-alert result marked Degraded so the aggregator can count it.
// Ingestion is never stopped by a slow or broken classifier.
type Timed struct {
	inner   Classifier
	timeout time.Duration
	log     zerolog.Logger
}

// NewTimed wraps inner with the given timeout.
func NewTimed(inner Classifier, timeout time.Duration) *Timed {
	return &Timed{
		inner:   inner,
		timeout: timeout,
		log:     log.With().Str("component", "classifier").Logger(),
	}
}

func (t *Timed) Classify(ctx context.Context, frame models.Frame, prev *models.Frame) (models.ClassificationResult, error) {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type outcome struct {
		res models.ClassificationResult
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := t.inner.Classify(cctx, frame, prev)
		ch <- outcome{res, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			t.log.Warn().Err(out.err).
				Str("camera_id", frame.CameraID).
				Uint64("sequence", frame.Sequence).
				Msg("Classification failed, degrading to non-alert")
			return degraded(frame), nil
		}
		return out.res, nil
	case <-cctx.Done():
		t.log.Warn().
			Str("camera_id", frame.CameraID).
			Uint64("sequence", frame.Sequence).
			Dur("timeout", t.timeout).
			Msg("Classification timed out, degrading to non-alert")
		return degraded(frame), nil
	}
}

func degraded(frame models.Frame) models.ClassificationResult {
	return models.ClassificationResult{
		CameraID: frame.CameraID,
		Sequence: frame.Sequence,
		Degraded: true,
	}
}

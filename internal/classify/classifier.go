package classify

import (
	"context"

	"vigil-server/internal/models"
)

// Classifier decides whether a frame constitutes a security alert. The
// previous frame for the same camera is passed when available so
// delta-based detectors can use it; prev is nil for the first frame.
//
// Implementations are interchangeable at construction time; the
// pipeline depends only on this contract.
type Classifier interface {
	Classify(ctx context.Context, frame models.Frame, prev *models.Frame) (models.ClassificationResult, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, frame models.Frame, prev *models.Frame) (models.ClassificationResult, error)

func (f Func) Classify(ctx context.Context, frame models.Frame, prev *models.Frame) (models.ClassificationResult, error) {
	return f(ctx, frame, prev)
}

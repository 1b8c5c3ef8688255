package classify

import (
	"context"

	"vigil-server/internal/models"
)

// MotionDelta is a payload-difference detector: it compares a frame
// against the previous frame from the same camera and raises an alert
// when the fraction of changed bytes exceeds the threshold. It needs no
// decoder, which keeps it usable on opaque payloads.
type MotionDelta struct {
	// Threshold is the changed-byte ratio in (0,1] above which a frame
	// is alert-worthy.
	Threshold float64

	// MinChanged guards against alerting on tiny frames; fewer changed
	// bytes than this never alerts.
	MinChanged int
}

// NewMotionDelta returns a detector with the given changed-byte ratio
// threshold.
func NewMotionDelta(threshold float64) *MotionDelta {
	return &MotionDelta{Threshold: threshold, MinChanged: 16}
}

func (d *MotionDelta) Classify(_ context.Context, frame models.Frame, prev *models.Frame) (models.ClassificationResult, error) {
	res := models.ClassificationResult{
		CameraID: frame.CameraID,
		Sequence: frame.Sequence,
	}

	// First frame from a camera has nothing to diff against.
	if prev == nil || len(prev.Payload) == 0 || len(frame.Payload) == 0 {
		return res, nil
	}

	n := len(frame.Payload)
	if len(prev.Payload) < n {
		n = len(prev.Payload)
	}

	changed := 0
	for i := 0; i < n; i++ {
		if frame.Payload[i] != prev.Payload[i] {
			changed++
		}
	}
	// Size difference counts as change.
	changed += len(frame.Payload) - n + len(prev.Payload) - n

	ratio := float64(changed) / float64(maxInt(len(frame.Payload), len(prev.Payload)))
	if changed >= d.MinChanged && ratio >= d.Threshold {
		res.IsAlert = true
		res.Confidence = ratio
	}
	return res, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

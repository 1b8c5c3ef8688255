package models

import (
	"time"
)

// AlertRecord is created for every classification with IsAlert set.
// AlertID increases monotonically per camera. Records are immutable.
type AlertRecord struct {
	AlertID   uint64               `json:"alert_id"`
	CameraID  string               `json:"camera_id"`
	Timestamp time.Time            `json:"timestamp"`
	Result    ClassificationResult `json:"result"`
}

// CameraCounts is the per-camera slice of the analytics counters.
type CameraCounts struct {
	Frames uint64 `json:"frames"`
	Alerts uint64 `json:"alerts"`
}

// AnalyticsSnapshot is a point-in-time consistent view of the
// aggregator's counters. AlertRate is alerts/frames in [0,1] and is
// defined as 0 while no frames have been processed.
type AnalyticsSnapshot struct {
	TotalFramesProcessed    uint64                  `json:"total_frames_processed"`
	TotalAlertsRaised       uint64                  `json:"total_alerts_raised"`
	DegradedClassifications uint64                  `json:"degraded_classifications"`
	RejectedFrames          uint64                  `json:"rejected_frames"`
	AlertRate               float64                 `json:"alert_rate"`
	PerCamera               map[string]CameraCounts `json:"per_camera"`
	TakenAt                 time.Time               `json:"taken_at"`
}

// AlertSink receives alert records for delivery outside the pipeline
// (message broker, durable store). Implementations must not block.
type AlertSink interface {
	Emit(record AlertRecord)
}

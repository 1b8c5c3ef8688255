package models

import (
	"time"
)

// Frame represents a single captured image from a camera. Frames are
// immutable once produced; the pipeline stage holding one owns it until
// it is handed off downstream.
type Frame struct {
	CameraID  string    `json:"camera_id"`
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Payload   []byte    `json:"-"`
	Size      int       `json:"size"`
}

// Region is a bounding box in pixel coordinates.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ClassificationResult is the classifier's verdict for one frame. It
// references the frame by identity (camera id + sequence), never by
// payload ownership.
type ClassificationResult struct {
	CameraID   string  `json:"camera_id"`
	Sequence   uint64  `json:"sequence"`
	IsAlert    bool    `json:"is_alert"`
	Confidence float64 `json:"confidence"`
	Region     *Region `json:"region,omitempty"`

	// Degraded marks a result produced by the timeout fallback rather
	// than the classifier itself. Always non-alert.
	Degraded bool `json:"degraded,omitempty"`
}

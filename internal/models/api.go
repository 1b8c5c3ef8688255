package models

import (
	"time"
)

// CameraControlRequest is the body of POST /camera, matching the
// companion client's contract.
type CameraControlRequest struct {
	Action string `json:"action" binding:"required,oneof=start stop"`
}

// SelfDestructRequest gates the irreversible system wipe. Confirm must
// be set explicitly by the caller; it is never inferred.
type SelfDestructRequest struct {
	Confirm bool `json:"confirm"`
}

// CameraStatus describes one camera's ingestion state for the API.
type CameraStatus struct {
	CameraID      string    `json:"camera_id"`
	Source        string    `json:"source"`
	Active        bool      `json:"active"`
	LastSequence  uint64    `json:"last_sequence"`
	LastFrameTime time.Time `json:"last_frame_time"`
}

// SessionResponse is returned when a viewer session is created.
type SessionResponse struct {
	SessionID string   `json:"session_id"`
	Channels  []string `json:"channels"`
	Policy    string   `json:"policy"`
	Backlog   int      `json:"backlog"`
}

// StateResponse reports the monitoring state machine's current state.
type StateResponse struct {
	State string `json:"state"`
}

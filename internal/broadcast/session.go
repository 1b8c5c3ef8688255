package broadcast

import (
	"strings"
	"sync"
	"time"

	"vigil-server/internal/models"
)

// Channel is the set of streams a viewer session subscribes to.
type Channel uint8

const (
	ChannelVideo Channel = 1 << iota
	ChannelAlerts

	ChannelBoth = ChannelVideo | ChannelAlerts
)

// ParseChannels maps a comma-separated request value ("video,alerts")
// to a channel set. Empty input means video only.
func ParseChannels(raw string) Channel {
	var ch Channel
	for _, part := range strings.Split(raw, ",") {
		switch strings.TrimSpace(part) {
		case "video":
			ch |= ChannelVideo
		case "alerts":
			ch |= ChannelAlerts
		}
	}
	if ch == 0 {
		ch = ChannelVideo
	}
	return ch
}

func (c Channel) Strings() []string {
	var out []string
	if c&ChannelVideo != 0 {
		out = append(out, "video")
	}
	if c&ChannelAlerts != 0 {
		out = append(out, "alerts")
	}
	return out
}

// OverflowPolicy governs a session whose video backlog is full.
type OverflowPolicy int

const (
	// DropOldest discards the oldest buffered frame in favor of the new
	// one. Video only; alerts are never silently dropped.
	DropOldest OverflowPolicy = iota

	// Disconnect terminates the session and emits a SessionDropped
	// event.
	Disconnect
)

// ParsePolicy maps a request value to a policy, defaulting to
// drop-oldest.
func ParsePolicy(raw string) OverflowPolicy {
	if strings.TrimSpace(raw) == "disconnect" {
		return Disconnect
	}
	return DropOldest
}

func (p OverflowPolicy) String() string {
	if p == Disconnect {
		return "disconnect"
	}
	return "drop-oldest"
}

// DropEvent is emitted when the hub disconnects a session, either for
// overflow or because the system was destroyed.
type DropEvent struct {
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// Session is one viewer's bounded view of the live feed. It is owned
// exclusively by the hub; consumers read from Frames and Alerts until
// Done is closed.
type Session struct {
	ID       string
	Channels Channel
	Policy   OverflowPolicy
	Backlog  int

	frames chan models.Frame
	alerts chan models.AlertRecord
	done   chan struct{}
	once   sync.Once

	sent    uint64
	dropped uint64
}

// Frames delivers video frames in publish order.
func (s *Session) Frames() <-chan models.Frame { return s.frames }

// Alerts delivers alert records in publish order.
func (s *Session) Alerts() <-chan models.AlertRecord { return s.alerts }

// Done is closed when the hub disconnects the session.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
)

var (
	// ErrHubClosed is returned for subscriptions after the hub shut
	// down (system destroyed).
	ErrHubClosed = errors.New("broadcast: hub is closed")

	// ErrSessionNotFound is returned when unsubscribing an unknown or
	// already-removed session.
	ErrSessionNotFound = errors.New("broadcast: session not found")
)

// Hub fans frames and alert records out to viewer sessions. Every
// session has its own bounded backlog, so a slow viewer never stalls
// ingestion or any other viewer. Alert delivery uses a separate channel
// that is never subject to drop-oldest; a session that cannot keep up
// with alerts is disconnected.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	drops chan DropEvent
	log   zerolog.Logger

	published uint64
}

// NewHub creates an empty hub. Drop events are buffered; a full event
// buffer loses the oldest event rather than blocking a publish.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		drops:    make(chan DropEvent, 64),
		log:      log.With().Str("component", "broadcast").Logger(),
	}
}

// Subscribe creates a viewer session. The session only receives frames
// and alerts produced after this call; there is no history replay.
// Backlog must be at least 1; values below are clamped.
func (h *Hub) Subscribe(channels Channel, policy OverflowPolicy, backlog int) (*Session, error) {
	if backlog < 1 {
		backlog = 1
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	s := &Session{
		ID:       uuid.NewString(),
		Channels: channels,
		Policy:   policy,
		Backlog:  backlog,
		frames:   make(chan models.Frame, backlog),
		alerts:   make(chan models.AlertRecord, backlog),
		done:     make(chan struct{}),
	}
	h.sessions[s.ID] = s

	h.log.Info().
		Str("session_id", s.ID).
		Strs("channels", channels.Strings()).
		Str("policy", policy.String()).
		Int("backlog", backlog).
		Msg("Viewer session subscribed")
	return s, nil
}

// Unsubscribe removes a session and releases its buffers immediately.
func (h *Hub) Unsubscribe(sessionID string) error {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if ok {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	h.log.Info().Str("session_id", sessionID).Msg("Viewer session unsubscribed")
	return nil
}

// Publish delivers a frame to every video subscriber without blocking.
// Sessions whose backlog is full are handled per their overflow policy.
func (h *Hub) Publish(frame models.Frame) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	atomic.AddUint64(&h.published, 1)

	var victims []*Session
	for _, s := range h.sessions {
		if s.Channels&ChannelVideo == 0 {
			continue
		}
		select {
		case s.frames <- frame:
			atomic.AddUint64(&s.sent, 1)
		default:
			switch s.Policy {
			case DropOldest:
				// Make room by discarding the oldest buffered frame,
				// then retry once. A concurrent reader may have drained
				// the backlog in between, so the retry is non-blocking
				// too.
				select {
				case <-s.frames:
					atomic.AddUint64(&s.dropped, 1)
				default:
				}
				select {
				case s.frames <- frame:
					atomic.AddUint64(&s.sent, 1)
				default:
					atomic.AddUint64(&s.dropped, 1)
				}
			case Disconnect:
				victims = append(victims, s)
			}
		}
	}
	h.mu.RUnlock()

	for _, s := range victims {
		h.drop(s, "video backlog overflow")
	}
}

// PublishAlert delivers an alert record to every alert subscriber.
// Alerts are never dropped in favor of newer ones: a session that
// cannot absorb an alert is disconnected regardless of its video
// policy.
func (h *Hub) PublishAlert(record models.AlertRecord) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}

	var victims []*Session
	for _, s := range h.sessions {
		if s.Channels&ChannelAlerts == 0 {
			continue
		}
		select {
		case s.alerts <- record:
		default:
			victims = append(victims, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range victims {
		h.drop(s, "alert backlog overflow")
	}
}

// Drops exposes SessionDropped events for the control surface.
func (h *Hub) Drops() <-chan DropEvent { return h.drops }

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Session looks up a live session by id.
func (h *Hub) Session(sessionID string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[sessionID]
	return s, ok
}

// Stats reports sent/dropped counters for one session.
func (h *Hub) Stats(sessionID string) (sent, dropped uint64, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[sessionID]
	if !ok {
		return 0, 0, ErrSessionNotFound
	}
	return atomic.LoadUint64(&s.sent), atomic.LoadUint64(&s.dropped), nil
}

// CloseAll disconnects every session and refuses new subscriptions.
// Called on the destroy path; after it returns no frame reaches any
// viewer.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
		h.emitDrop(DropEvent{SessionID: s.ID, Reason: "system destroyed", At: time.Now()})
	}
	h.log.Info().Int("sessions", len(sessions)).Msg("All viewer sessions disconnected")
}

func (h *Hub) drop(s *Session, reason string) {
	h.mu.Lock()
	_, ok := h.sessions[s.ID]
	if ok {
		delete(h.sessions, s.ID)
	}
	h.mu.Unlock()

	// Another publisher may have dropped it first.
	if !ok {
		return
	}

	s.close()
	h.emitDrop(DropEvent{SessionID: s.ID, Reason: reason, At: time.Now()})
	h.log.Warn().Str("session_id", s.ID).Str("reason", reason).Msg("Viewer session dropped")
}

func (h *Hub) emitDrop(ev DropEvent) {
	select {
	case h.drops <- ev:
	default:
		select {
		case <-h.drops:
		default:
		}
		select {
		case h.drops <- ev:
		default:
		}
	}
}

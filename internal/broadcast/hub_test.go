package broadcast

import (
	"testing"
	"time"

	"vigil-server/internal/models"
)

func frame(seq uint64) models.Frame {
	return models.Frame{CameraID: "cam-1", Sequence: seq, Timestamp: time.Now()}
}

func TestBasicFanOut(t *testing.T) {
	h := NewHub()

	s, err := h.Subscribe(ChannelVideo, DropOldest, 4)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	h.Publish(frame(1))

	select {
	case got := <-s.Frames():
		if got.Sequence != 1 {
			t.Errorf("expected seq 1, got %d", got.Sequence)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for frame")
	}
}

func TestOverflowPolicies(t *testing.T) {
	h := NewHub()

	// Backlog 1 with drop-oldest: only the most recent frame survives.
	lagging, _ := h.Subscribe(ChannelVideo, DropOldest, 1)
	// Disconnect-on-overflow with backlog 1: dropped on the second push.
	fragile, _ := h.Subscribe(ChannelVideo, Disconnect, 1)
	// Big enough backlog to hold everything: sees all frames in order.
	healthy, _ := h.Subscribe(ChannelVideo, DropOldest, 8)

	for seq := uint64(1); seq <= 5; seq++ {
		h.Publish(frame(seq))
	}

	got := <-lagging.Frames()
	if got.Sequence != 5 {
		t.Errorf("drop-oldest session: expected only newest frame 5, got %d", got.Sequence)
	}
	select {
	case extra := <-lagging.Frames():
		t.Errorf("drop-oldest session: unexpected extra frame %d", extra.Sequence)
	default:
	}

	select {
	case <-fragile.Done():
	case <-time.After(time.Second):
		t.Fatal("disconnect session was not dropped")
	}
	select {
	case ev := <-h.Drops():
		if ev.SessionID != fragile.ID {
			t.Errorf("drop event for wrong session: %s", ev.SessionID)
		}
		if ev.Reason != "video backlog overflow" {
			t.Errorf("unexpected drop reason: %q", ev.Reason)
		}
	case <-time.After(time.Second):
		t.Fatal("no SessionDropped event emitted")
	}

	for seq := uint64(1); seq <= 5; seq++ {
		got := <-healthy.Frames()
		if got.Sequence != seq {
			t.Errorf("healthy session: expected seq %d, got %d", seq, got.Sequence)
		}
	}

	if h.Count() != 2 {
		t.Errorf("expected 2 live sessions after overflow, got %d", h.Count())
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub()
	h.Subscribe(ChannelVideo, DropOldest, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for seq := uint64(1); seq <= 1000; seq++ {
			h.Publish(frame(seq))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow session")
	}
}

func TestNoHistoryReplay(t *testing.T) {
	h := NewHub()
	h.Publish(frame(1))
	h.Publish(frame(2))

	s, _ := h.Subscribe(ChannelVideo, DropOldest, 4)
	h.Publish(frame(3))

	got := <-s.Frames()
	if got.Sequence != 3 {
		t.Errorf("mid-stream joiner saw history: got seq %d", got.Sequence)
	}
}

func TestChannelSelection(t *testing.T) {
	h := NewHub()
	videoOnly, _ := h.Subscribe(ChannelVideo, DropOldest, 4)
	alertsOnly, _ := h.Subscribe(ChannelAlerts, DropOldest, 4)
	both, _ := h.Subscribe(ChannelBoth, DropOldest, 4)

	h.Publish(frame(1))
	h.PublishAlert(models.AlertRecord{AlertID: 1, CameraID: "cam-1"})

	if got := <-videoOnly.Frames(); got.Sequence != 1 {
		t.Errorf("video session missed frame")
	}
	select {
	case <-videoOnly.Alerts():
		t.Error("video-only session received an alert")
	default:
	}

	if got := <-alertsOnly.Alerts(); got.AlertID != 1 {
		t.Errorf("alert session missed alert")
	}
	select {
	case <-alertsOnly.Frames():
		t.Error("alerts-only session received a frame")
	default:
	}

	<-both.Frames()
	<-both.Alerts()
}

func TestAlertOverflowAlwaysDisconnects(t *testing.T) {
	h := NewHub()
	// Video policy is drop-oldest, but alerts never drop: overflow on
	// the alert channel disconnects the session.
	s, _ := h.Subscribe(ChannelAlerts, DropOldest, 1)

	h.PublishAlert(models.AlertRecord{AlertID: 1, CameraID: "cam-1"})
	h.PublishAlert(models.AlertRecord{AlertID: 2, CameraID: "cam-1"})

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session not disconnected on alert overflow")
	}

	// The buffered alert is still readable; nothing was overwritten.
	if got := <-s.Alerts(); got.AlertID != 1 {
		t.Errorf("expected alert 1 intact, got %d", got.AlertID)
	}
}

func TestCloseAll(t *testing.T) {
	h := NewHub()
	a, _ := h.Subscribe(ChannelBoth, DropOldest, 4)
	b, _ := h.Subscribe(ChannelVideo, Disconnect, 4)

	h.CloseAll()

	for _, s := range []*Session{a, b} {
		select {
		case <-s.Done():
		case <-time.After(time.Second):
			t.Fatal("session not closed by CloseAll")
		}
	}

	// No frame is forwarded after destruction.
	h.Publish(frame(99))
	select {
	case f := <-a.Frames():
		t.Errorf("frame %d delivered after CloseAll", f.Sequence)
	default:
	}

	if _, err := h.Subscribe(ChannelVideo, DropOldest, 4); err != ErrHubClosed {
		t.Errorf("expected ErrHubClosed, got %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	h := NewHub()
	s, _ := h.Subscribe(ChannelVideo, DropOldest, 4)

	if err := h.Unsubscribe(s.ID); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}
	select {
	case <-s.Done():
	default:
		t.Error("session not closed on unsubscribe")
	}

	if err := h.Unsubscribe(s.ID); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if h.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", h.Count())
	}
}

func TestStats(t *testing.T) {
	h := NewHub()
	s, _ := h.Subscribe(ChannelVideo, DropOldest, 1)

	h.Publish(frame(1))
	h.Publish(frame(2))

	sent, dropped, err := h.Stats(s.ID)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if sent != 2 {
		t.Errorf("expected 2 sent, got %d", sent)
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", dropped)
	}
}

package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil-server/internal/analytics"
	"vigil-server/internal/broadcast"
	"vigil-server/internal/capture"
	"vigil-server/internal/classify"
	"vigil-server/internal/models"
	"vigil-server/internal/monitor"
	"vigil-server/internal/store"
)

// fakeSource lets tests push frames by hand.
type fakeSource struct {
	id   string
	ch   chan models.Frame
	once sync.Once
}

func newFakeSource(id string) *fakeSource {
	return &fakeSource{id: id, ch: make(chan models.Frame, 256)}
}

// addFake registers a fake source under its own id.
func addFake(t *testing.T, p *Pipeline, src *fakeSource) {
	t.Helper()
	require.NoError(t, p.AddCamera(src.id, "fake", func() capture.Source { return src }))
}

func (f *fakeSource) ID() string                  { return f.id }
func (f *fakeSource) Start(context.Context) error { return nil }
func (f *fakeSource) Frames() <-chan models.Frame { return f.ch }
func (f *fakeSource) Stop()                       { f.once.Do(func() { close(f.ch) }) }

func (f *fakeSource) push(seq uint64, payload []byte) {
	f.ch <- models.Frame{
		CameraID:  f.id,
		Sequence:  seq,
		Timestamp: time.Now(),
		Payload:   payload,
		Size:      len(payload),
	}
}

// recordingSink captures emitted alert records.
type recordingSink struct {
	mu      sync.Mutex
	records []models.AlertRecord
}

func (s *recordingSink) Emit(rec models.AlertRecord) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// alertEvery classifies every n-th frame as an alert.
func alertEvery(n uint64) classify.Classifier {
	return classify.Func(func(_ context.Context, frame models.Frame, _ *models.Frame) (models.ClassificationResult, error) {
		return models.ClassificationResult{
			CameraID:   frame.CameraID,
			Sequence:   frame.Sequence,
			IsAlert:    frame.Sequence%n == 0,
			Confidence: 0.8,
		}, nil
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestEndToEndScenario(t *testing.T) {
	machine := monitor.NewMachine()
	agg := analytics.NewAggregator(machine)
	hub := broadcast.NewHub()
	sink := &recordingSink{}
	src := newFakeSource("cam-1")

	p := New(alertEvery(25), agg, hub, store.Nop{}, sink)
	addFake(t, p, src)

	require.NoError(t, machine.Start())
	require.NoError(t, p.Start())

	viewer, err := hub.Subscribe(broadcast.ChannelBoth, broadcast.DropOldest, 256)
	require.NoError(t, err)

	// 100 frames, every 25th an alert: 4 alerts total.
	for seq := uint64(1); seq <= 100; seq++ {
		src.push(seq, []byte{byte(seq)})
	}

	waitFor(t, func() bool { return agg.Snapshot().TotalFramesProcessed == 100 })

	snap := agg.Snapshot()
	assert.Equal(t, uint64(100), snap.TotalFramesProcessed)
	assert.Equal(t, uint64(4), snap.TotalAlertsRaised)
	assert.InDelta(t, 0.04, snap.AlertRate, 1e-9)
	assert.Equal(t, 4, sink.count())

	// Viewer received the frames in order and the alerts.
	first := <-viewer.Frames()
	assert.Equal(t, uint64(1), first.Sequence)
	alert := <-viewer.Alerts()
	assert.Equal(t, uint64(1), alert.AlertID)
	assert.Equal(t, uint64(25), alert.Result.Sequence)

	// Self-destruct: pipeline stops, hub closes, later commands fail.
	machine.OnDestroy(func() {
		p.Stop()
		hub.CloseAll()
	})
	src.Stop()
	require.NoError(t, machine.SelfDestruct())
	assert.ErrorIs(t, machine.Start(), monitor.ErrSystemDestroyed)

	select {
	case <-viewer.Done():
	case <-time.After(time.Second):
		t.Fatal("viewer not disconnected on self-destruct")
	}

	// Analytics remain queryable after destruction.
	assert.Equal(t, uint64(100), agg.Snapshot().TotalFramesProcessed)
}

func TestOutOfOrderFramesRejected(t *testing.T) {
	machine := monitor.NewMachine()
	agg := analytics.NewAggregator(machine)
	src := newFakeSource("cam-1")

	p := New(alertEvery(1000), agg, broadcast.NewHub(), store.Nop{}, &recordingSink{})
	addFake(t, p, src)
	require.NoError(t, p.Start())
	defer p.Stop()

	src.push(1, nil)
	src.push(3, nil)
	src.push(2, nil) // stale, rejected
	src.push(3, nil) // duplicate, rejected
	src.push(4, nil)

	waitFor(t, func() bool { return agg.Snapshot().TotalFramesProcessed == 3 })

	snap := agg.Snapshot()
	assert.Equal(t, uint64(3), snap.TotalFramesProcessed)
	assert.Equal(t, uint64(2), snap.RejectedFrames)
}

func TestCamerasDoNotBlockEachOther(t *testing.T) {
	machine := monitor.NewMachine()
	agg := analytics.NewAggregator(machine)

	fast := newFakeSource("fast")
	stalled := newFakeSource("stalled")

	// The stalled camera's classifier hangs until its context dies; it
	// is wrapped with a timeout like the real wiring, so the fast
	// camera's budget is the upper bound of interference.
	hang := classify.Func(func(ctx context.Context, frame models.Frame, _ *models.Frame) (models.ClassificationResult, error) {
		if frame.CameraID == "stalled" {
			<-ctx.Done()
		}
		return models.ClassificationResult{CameraID: frame.CameraID, Sequence: frame.Sequence}, nil
	})

	p := New(classify.NewTimed(hang, 50*time.Millisecond), agg, broadcast.NewHub(), store.Nop{}, &recordingSink{})
	addFake(t, p, fast)
	addFake(t, p, stalled)
	require.NoError(t, p.Start())
	defer p.Stop()

	stalled.push(1, nil)
	for seq := uint64(1); seq <= 20; seq++ {
		fast.push(seq, nil)
	}

	waitFor(t, func() bool {
		snap := agg.Snapshot()
		return snap.PerCamera["fast"].Frames == 20
	})
}

func TestDuplicateCameraRejected(t *testing.T) {
	p := New(alertEvery(2), analytics.NewAggregator(monitor.NewMachine()), broadcast.NewHub(), store.Nop{}, &recordingSink{})
	addFake(t, p, newFakeSource("cam-1"))
	assert.ErrorIs(t, p.AddCamera("cam-1", "fake", func() capture.Source { return newFakeSource("cam-1") }), ErrCameraExists)
}

func TestAlertsPersistedToStore(t *testing.T) {
	machine := monitor.NewMachine()
	agg := analytics.NewAggregator(machine)
	alertStore, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	defer alertStore.Close()

	src := newFakeSource("cam-1")
	p := New(alertEvery(2), agg, broadcast.NewHub(), alertStore, &recordingSink{})
	addFake(t, p, src)
	require.NoError(t, p.Start())
	defer p.Stop()

	for seq := uint64(1); seq <= 6; seq++ {
		src.push(seq, nil)
	}
	waitFor(t, func() bool { return agg.Snapshot().TotalFramesProcessed == 6 })

	recent, err := alertStore.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

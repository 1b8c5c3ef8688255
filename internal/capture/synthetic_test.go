package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticProducesOrderedFrames(t *testing.T) {
	src := NewSynthetic("cam-1", time.Millisecond, 0)
	require.NoError(t, src.Start(context.Background()))
	defer src.Stop()

	var last uint64
	for i := 0; i < 10; i++ {
		select {
		case f := <-src.Frames():
			assert.Equal(t, "cam-1", f.CameraID)
			assert.Greater(t, f.Sequence, last)
			last = f.Sequence
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for synthetic frame")
		}
	}
}

func TestSyntheticStopClosesChannel(t *testing.T) {
	src := NewSynthetic("cam-1", time.Millisecond, 0)
	require.NoError(t, src.Start(context.Background()))

	<-src.Frames()
	src.Stop()

	// The channel drains and closes shortly after Stop.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-src.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("frames channel not closed after Stop")
		}
	}
}

func TestSyntheticMotionBursts(t *testing.T) {
	src := NewSynthetic("cam-1", time.Millisecond, 3)
	require.NoError(t, src.Start(context.Background()))
	defer src.Stop()

	payloads := map[uint64][]byte{}
	for len(payloads) < 4 {
		f := <-src.Frames()
		payloads[f.Sequence] = f.Payload
	}

	// Frame 3 is a motion burst: it differs from the flat frame 1.
	assert.NotEqual(t, payloads[1], payloads[3])
	// Frames 1 and 2 are both flat.
	assert.Equal(t, payloads[1], payloads[2])
}

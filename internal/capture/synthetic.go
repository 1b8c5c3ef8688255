package capture

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
)

// Synthetic generates frames without any camera hardware. It is used in
// demo mode and by tests. Frames carry a flat payload most of the time;
// every MotionEvery-th frame gets a scrambled payload so the motion
// classifier has something to find.
type Synthetic struct {
	id          string
	interval    time.Duration
	frameSize   int
	motionEvery uint64

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool

	frames chan models.Frame
	log    zerolog.Logger
}

// NewSynthetic creates a generator for the given camera id producing a
// frame every interval. motionEvery of 0 disables motion bursts.
func NewSynthetic(id string, interval time.Duration, motionEvery uint64) *Synthetic {
	return &Synthetic{
		id:          id,
		interval:    interval,
		frameSize:   4096,
		motionEvery: motionEvery,
		frames:      make(chan models.Frame, 8),
		log:         log.With().Str("component", "capture").Str("camera_id", id).Logger(),
	}
}

func (s *Synthetic) ID() string { return s.id }

func (s *Synthetic) Frames() <-chan models.Frame { return s.frames }

func (s *Synthetic) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.run(runCtx)
	s.log.Info().Dur("interval", s.interval).Msg("Synthetic source started")
	return nil
}

func (s *Synthetic) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Synthetic) run(ctx context.Context) {
	defer close(s.frames)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Uint64("frames", seq).Msg("Synthetic source stopped")
			return
		case <-ticker.C:
			seq++
			frame := models.Frame{
				CameraID:  s.id,
				Sequence:  seq,
				Timestamp: time.Now(),
				Payload:   s.payload(seq),
				Size:      s.frameSize,
			}
			select {
			case s.frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Synthetic) payload(seq uint64) []byte {
	buf := make([]byte, s.frameSize)
	if s.motionEvery > 0 && seq%s.motionEvery == 0 {
		rand.Read(buf)
		return buf
	}
	for i := range buf {
		buf[i] = 0x20
	}
	return buf
}

package capture

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"vigil-server/internal/helpers"
	"vigil-server/internal/models"
)

// OpenCV reads frames from a local device or an RTSP/HTTP stream via
// gocv and hands them to the pipeline as JPEG payloads. The source
// string is either a device index ("0") or a stream URL.
type OpenCV struct {
	id     string
	source string
	fps    int

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool

	frames chan models.Frame
	log    zerolog.Logger
}

// NewOpenCV creates a capture source for the camera. fps bounds the
// read rate so slow consumers upstream see a predictable load.
func NewOpenCV(id, source string, fps int) *OpenCV {
	if fps <= 0 {
		fps = 15
	}
	return &OpenCV{
		id:     id,
		source: source,
		fps:    fps,
		frames: make(chan models.Frame, 8),
		log:    log.With().Str("component", "capture").Str("camera_id", id).Logger(),
	}
}

func (o *OpenCV) ID() string { return o.id }

func (o *OpenCV) Frames() <-chan models.Frame { return o.frames }

func (o *OpenCV) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return nil
	}

	cap, err := o.open()
	if err != nil {
		return err
	}

	o.started = true
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	go o.run(runCtx, cap)
	o.log.Info().Str("source", o.source).Int("fps", o.fps).Msg("VideoCapture opened")
	return nil
}

func (o *OpenCV) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *OpenCV) open() (*gocv.VideoCapture, error) {
	if idx, err := strconv.Atoi(o.source); err == nil {
		cap, err := gocv.OpenVideoCapture(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to open device %d: %w", idx, err)
		}
		return cap, nil
	}

	cap, err := gocv.OpenVideoCaptureWithAPI(o.source, gocv.VideoCaptureFFmpeg)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream %s: %w", o.source, err)
	}
	return cap, nil
}

func (o *OpenCV) run(ctx context.Context, cap *gocv.VideoCapture) {
	defer close(o.frames)
	defer cap.Close()

	img := gocv.NewMat()
	defer img.Close()

	ticker := time.NewTicker(time.Second / time.Duration(o.fps))
	defer ticker.Stop()

	var seq uint64
	consecutiveErrors := 0
	const maxConsecutiveErrors = 10

	for {
		select {
		case <-ctx.Done():
			o.log.Info().Uint64("frames", seq).Msg("VideoCapture reader stopped")
			return
		case <-ticker.C:
		}

		if ok := cap.Read(&img); !ok || img.Empty() {
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				o.log.Error().Int("errors", consecutiveErrors).Msg("Too many consecutive read failures, stopping capture")
				return
			}
			continue
		}
		consecutiveErrors = 0

		payload, err := helpers.EncodeFrameJPEG(img, helpers.FrameQuality)
		if err != nil {
			o.log.Error().Err(err).Msg("Failed to encode frame")
			continue
		}

		seq++

		frame := models.Frame{
			CameraID:  o.id,
			Sequence:  seq,
			Timestamp: time.Now(),
			Payload:   payload,
			Size:      len(payload),
		}

		select {
		case o.frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

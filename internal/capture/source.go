package capture

import (
	"context"

	"vigil-server/internal/models"
)

// Source is a frame source adapter: it normalizes frames from a camera
// into the pipeline's representation and pushes them on a channel.
// Implementations must stop delivering frames promptly once Stop is
// called or the context given to Start is cancelled, and must close the
// frames channel when done.
type Source interface {
	// ID returns the camera identifier the source produces frames for.
	ID() string

	// Start begins producing frames. It returns once production is
	// running; the frame loop itself runs in a background goroutine.
	Start(ctx context.Context) error

	// Frames is the delivery channel. Closed when the source stops.
	Frames() <-chan models.Frame

	// Stop halts frame delivery. Idempotent.
	Stop()
}

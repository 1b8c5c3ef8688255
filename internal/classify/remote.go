package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
)

// Remote sends frames to an external analysis service over its REST
// /analyze endpoint and maps the response to a classification result.
// The service contract matches the companion system's analyzer: a JSON
// body with the base64 frame, a JSON reply with an alert flag,
// confidence and optional bounding box.
type Remote struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

type analyzeRequest struct {
	CameraID string `json:"camera_id"`
	Sequence uint64 `json:"sequence"`
	Image    string `json:"image"`
}

type analyzeResponse struct {
	Alert      bool           `json:"alert"`
	Confidence float64        `json:"confidence"`
	Region     *models.Region `json:"region,omitempty"`
}

// NewRemote creates a classifier backed by the analysis service at
// baseURL. The client timeout is a transport-level backstop; the
// pipeline's classification budget is enforced by the Timed wrapper.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		log:     log.With().Str("component", "remote_classifier").Logger(),
	}
}

func (r *Remote) Classify(ctx context.Context, frame models.Frame, _ *models.Frame) (models.ClassificationResult, error) {
	res := models.ClassificationResult{
		CameraID: frame.CameraID,
		Sequence: frame.Sequence,
	}

	body, err := json.Marshal(analyzeRequest{
		CameraID: frame.CameraID,
		Sequence: frame.Sequence,
		Image:    base64.StdEncoding.EncodeToString(frame.Payload),
	})
	if err != nil {
		return res, fmt.Errorf("encode analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return res, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return res, fmt.Errorf("analyze request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("analyze service returned status %d", resp.StatusCode)
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return res, fmt.Errorf("decode analyze response: %w", err)
	}

	res.IsAlert = out.Alert
	res.Confidence = out.Confidence
	res.Region = out.Region

	r.log.Debug().
		Str("camera_id", frame.CameraID).
		Uint64("sequence", frame.Sequence).
		Bool("alert", res.IsAlert).
		Msg("Remote classification completed")
	return res, nil
}

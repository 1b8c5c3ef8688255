package helpers

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

const (
	// Frames larger than this are downscaled before broadcast so a
	// single viewer message stays small.
	MaxFrameWidth  = 1280
	MaxFrameHeight = 720

	// JPEG quality for broadcast payloads.
	FrameQuality = 75
)

// IsJPEG checks the magic bytes (FF D8) of a payload.
func IsJPEG(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8
}

// FitWithin computes the target dimensions for an image so it fits in
// maxWidth x maxHeight with its aspect ratio preserved. Images already
// within bounds are returned unchanged; nothing is ever upscaled.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	scaleX := float64(maxWidth) / float64(width)
	scaleY := float64(maxHeight) / float64(height)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	return int(float64(width) * scale), int(float64(height) * scale)
}

// EncodeFrameJPEG downscales a captured frame to the broadcast bounds
// and encodes it as JPEG. The Mat is not modified.
func EncodeFrameJPEG(img gocv.Mat, quality int) ([]byte, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	src := img
	w, h := FitWithin(img.Cols(), img.Rows(), MaxFrameWidth, MaxFrameHeight)
	if w != img.Cols() || h != img.Rows() {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(img, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
		src = resized
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, src, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame as JPEG: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

package helpers

import "testing"

func TestIsJPEG(t *testing.T) {
	if !IsJPEG([]byte{0xFF, 0xD8, 0xFF, 0xE0}) {
		t.Error("expected JPEG magic bytes to be recognized")
	}
	if IsJPEG([]byte{0x89, 0x50, 0x4E, 0x47}) {
		t.Error("PNG header must not be treated as JPEG")
	}
	if IsJPEG([]byte{0xFF}) {
		t.Error("truncated payload must not be treated as JPEG")
	}
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"within bounds unchanged", 640, 480, 1280, 720, 640, 480},
		{"wide downscale", 1920, 1080, 1280, 720, 1280, 720},
		{"tall downscale", 1080, 1920, 1280, 720, 405, 720},
		{"never upscaled", 320, 240, 1280, 720, 320, 240},
		{"zero dims passthrough", 0, 0, 1280, 720, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := FitWithin(tc.w, tc.h, tc.maxW, tc.maxH)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("FitWithin(%d,%d,%d,%d) = %dx%d, want %dx%d",
					tc.w, tc.h, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

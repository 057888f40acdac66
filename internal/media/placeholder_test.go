package media

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"strings"
	"testing"
)

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"landscape", 1600, 1200, 20, 15},
		{"portrait", 300, 600, 10, 20},
		{"already tiny", 8, 8, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := Placeholder(testImage(tt.width, tt.height))
			if err != nil {
				t.Fatalf("Placeholder failed: %v", err)
			}

			const prefix = "data:image/jpeg;base64,"
			if !strings.HasPrefix(uri, prefix) {
				t.Fatalf("unexpected prefix: %.30q", uri)
			}
			raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
			if err != nil {
				t.Fatalf("invalid base64: %v", err)
			}
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
			if err != nil {
				t.Fatalf("payload is not a jpeg: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("placeholder = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPlaceholderEmpty(t *testing.T) {
	if _, err := Placeholder(nil); err == nil {
		t.Error("expected error for nil image")
	}
	if _, err := Placeholder(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestDefaultPlaceholderIsGIF(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(DefaultPlaceholder, "data:image/gif;base64,"))
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("GIF89a")) {
		t.Errorf("DefaultPlaceholder is not a GIF: %q", raw[:6])
	}
}

package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

const (
	// PlaceholderSize bounds the longest side of a blur placeholder.
	PlaceholderSize = 20

	// placeholderQuality keeps the inline data URI around a few hundred bytes.
	placeholderQuality = 40

	placeholderSigma = 1.0
)

// DefaultPlaceholder is used when no frame can be sampled from a source.
// It is a transparent 1x1 GIF.
const DefaultPlaceholder = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"

// Placeholder downsamples img to a tiny blurred JPEG and returns it as a
// base64 data URI.
func Placeholder(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("empty image")
	}

	small := imaging.Fit(img, PlaceholderSize, PlaceholderSize, imaging.Box)
	small = imaging.Blur(small, placeholderSigma)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: placeholderQuality}); err != nil {
		return "", fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

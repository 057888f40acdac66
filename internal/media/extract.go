package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"media-gallery/internal/filesystem"
	"media-gallery/internal/gallery"
	"media-gallery/internal/logging"
	"media-gallery/internal/mediatypes"
	"media-gallery/internal/metrics"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

// Resolution recorded for a video whose stream cannot be probed.
const (
	DefaultVideoWidth  = 1920
	DefaultVideoHeight = 1080
)

// Metadata is what the extractor learns about one source file.
type Metadata struct {
	Kind     mediatypes.Kind
	Width    int
	Height   int
	BlurData string
	// Degraded is set when a video fell back to default dimensions or the
	// constant placeholder.
	Degraded bool
}

// Extractor reads dimensions and builds blur placeholders.
type Extractor struct {
	video VideoProber
	retry filesystem.RetryConfig
}

// NewExtractor creates an extractor. video may be nil when no video sources
// are expected; videos are then always recorded in degraded mode.
func NewExtractor(video VideoProber) *Extractor {
	return &Extractor{
		video: video,
		retry: filesystem.DefaultRetryConfig(),
	}
}

// Extract dispatches on the file kind.
func (e *Extractor) Extract(ctx context.Context, path string) (*Metadata, error) {
	start := time.Now()
	defer func() {
		metrics.IngestStageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	}()

	switch kind := mediatypes.KindOf(path); kind {
	case mediatypes.KindImage:
		return e.ExtractImage(ctx, path)
	case mediatypes.KindVideo:
		return e.ExtractVideo(ctx, path), nil
	default:
		return nil, fmt.Errorf("%w: unsupported file type %s", gallery.ErrDecodeFailure, filepath.Ext(path))
	}
}

// ExtractImage decodes an image honoring EXIF orientation. Any decode error
// is reported as ErrDecodeFailure.
func (e *Extractor) ExtractImage(ctx context.Context, path string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, width, height, err := e.decode(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gallery.ErrDecodeFailure, filepath.Base(path), err)
	}

	blur, err := Placeholder(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gallery.ErrDecodeFailure, filepath.Base(path), err)
	}

	return &Metadata{
		Kind:     mediatypes.KindImage,
		Width:    width,
		Height:   height,
		BlurData: blur,
	}, nil
}

func (e *Extractor) decode(path string) (image.Image, int, int, error) {
	f, err := filesystem.OpenWithRetry(path, e.retry)
	if err != nil {
		return nil, 0, 0, err
	}
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if cerr := f.Close(); cerr != nil {
		logging.Warn("failed to close image file %s: %v", path, cerr)
	}
	if err == nil {
		b := img.Bounds()
		return img, b.Dx(), b.Dy(), nil
	}

	logging.Debug("imaging decode failed for %s: %v, trying libvips", path, err)

	vimg, w, h, verr := decodeWithVips(path, PlaceholderSize*8)
	if verr != nil {
		return nil, 0, 0, errors.Join(err, verr)
	}
	return vimg, w, h, nil
}

// ExtractVideo never fails. When probing fails, the item is recorded with
// the default resolution and the constant placeholder. When only the frame
// grab fails, probed dimensions are kept.
func (e *Extractor) ExtractVideo(ctx context.Context, path string) *Metadata {
	md := &Metadata{
		Kind:     mediatypes.KindVideo,
		Width:    DefaultVideoWidth,
		Height:   DefaultVideoHeight,
		BlurData: DefaultPlaceholder,
	}

	if e.video == nil {
		logging.Warn("%v: %s: no video prober configured, using defaults", gallery.ErrProbeFailure, path)
		md.Degraded = true
		metrics.IngestDegradedTotal.Inc()
		return md
	}

	width, height, err := e.video.Probe(ctx, path)
	if err != nil {
		logging.Warn("%v: %s: %v, using %dx%d", gallery.ErrProbeFailure, path, err, DefaultVideoWidth, DefaultVideoHeight)
		md.Degraded = true
		metrics.IngestDegradedTotal.Inc()
		return md
	}
	md.Width, md.Height = width, height

	frame, err := e.video.Frame(ctx, path)
	if err == nil {
		blur, perr := Placeholder(frame)
		if perr == nil {
			md.BlurData = blur
			return md
		}
		err = perr
	}

	logging.Warn("could not sample a frame from %s: %v, using default placeholder", path, err)
	md.Degraded = true
	metrics.IngestDegradedTotal.Inc()
	return md
}

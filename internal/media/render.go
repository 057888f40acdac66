package media

import (
	"fmt"

	"media-gallery/internal/gallery"

	"github.com/davidbyttow/govips/v2/vips"
)

// Renderer opens a source image for variant rendering.
type Renderer interface {
	Open(path string) (Source, error)
}

// Source is a decoded, orientation-corrected image that can be encoded at
// several widths.
type Source interface {
	Width() int
	Height() int
	// Render encodes the image scaled to width. It returns the encoded
	// bytes and the width actually produced.
	Render(width int, format gallery.Format, quality int) ([]byte, int, error)
	Close()
}

// VipsRenderer renders variants with libvips. InitVips must have succeeded.
type VipsRenderer struct{}

// Open loads path and applies its EXIF orientation.
func (VipsRenderer) Open(path string) (Source, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}
	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load image: %w", err)
	}
	if err := ref.AutoRotate(); err != nil {
		ref.Close()
		return nil, fmt.Errorf("vips auto-rotate failed: %w", err)
	}
	return &vipsSource{ref: ref}, nil
}

type vipsSource struct {
	ref *vips.ImageRef
}

func (s *vipsSource) Width() int  { return s.ref.Width() }
func (s *vipsSource) Height() int { return s.ref.Height() }
func (s *vipsSource) Close()      { s.ref.Close() }

func (s *vipsSource) Render(width int, format gallery.Format, quality int) ([]byte, int, error) {
	img, err := s.ref.Copy()
	if err != nil {
		return nil, 0, fmt.Errorf("vips copy failed: %w", err)
	}
	defer img.Close()

	if width < img.Width() {
		scale := float64(width) / float64(img.Width())
		if err := img.Resize(scale, vips.KernelLanczos3); err != nil {
			return nil, 0, fmt.Errorf("vips resize failed: %w", err)
		}
	}

	var buf []byte
	switch format {
	case gallery.FormatAVIF:
		p := vips.NewAvifExportParams()
		p.Quality = quality
		p.StripMetadata = true
		buf, _, err = img.ExportAvif(p)
	case gallery.FormatWebP:
		p := vips.NewWebpExportParams()
		p.Quality = quality
		p.StripMetadata = true
		buf, _, err = img.ExportWebp(p)
	case gallery.FormatJPEG:
		p := vips.NewJpegExportParams()
		p.Quality = quality
		p.StripMetadata = true
		p.Interlace = true
		p.OptimizeCoding = true
		buf, _, err = img.ExportJpeg(p)
	default:
		return nil, 0, fmt.Errorf("cannot render format %s", format)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("vips %s export failed: %w", format, err)
	}
	return buf, img.Width(), nil
}

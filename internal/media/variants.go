package media

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"media-gallery/internal/gallery"
	"media-gallery/internal/logging"
	"media-gallery/internal/metrics"
)

// GeneratorConfig locates derived files on disk and on the web.
type GeneratorConfig struct {
	OutputDir          string
	PublicMediaPrefix  string // URL prefix of OutputDir
	PublicSourcePrefix string // URL prefix of the ingestion root, for videos
}

// Generator writes the variant matrix for image items.
type Generator struct {
	renderer Renderer
	config   GeneratorConfig
	matrix   []gallery.Variant
}

// NewGenerator creates a generator for the default matrix.
func NewGenerator(renderer Renderer, config GeneratorConfig) *Generator {
	config.PublicMediaPrefix = strings.TrimRight(config.PublicMediaPrefix, "/")
	config.PublicSourcePrefix = strings.TrimRight(config.PublicSourcePrefix, "/")
	return &Generator{
		renderer: renderer,
		config:   config,
		matrix:   gallery.DefaultMatrix(),
	}
}

// VariantName is the file name of one matrix cell. Names are keyed by the
// target width so re-runs overwrite the same files.
func VariantName(slug string, v gallery.Variant) string {
	return fmt.Sprintf("%s-%d%s", slug, v.Width, v.Format.Ext())
}

// Rendition is a rendered variant set. Its files sit under hidden temp
// names in the output directory until Publish moves them to their final
// names, so a failed save never touches the variants already being served.
type Rendition struct {
	Assets []gallery.Asset
	staged []stagedFile
}

type stagedFile struct {
	tmp string
	dst string
}

// Publish moves every staged file into place. Files not yet moved when a
// rename fails are removed.
func (r *Rendition) Publish() error {
	if r == nil {
		return nil
	}
	for i, f := range r.staged {
		if err := os.Rename(f.tmp, f.dst); err != nil {
			removeStaged(r.staged[i:])
			r.staged = nil
			return fmt.Errorf("failed to move %s into place: %w", filepath.Base(f.dst), err)
		}
	}
	r.staged = nil
	return nil
}

// Discard removes the staged files. It is safe to call after Publish.
func (r *Rendition) Discard() {
	if r == nil {
		return
	}
	removeStaged(r.staged)
	r.staged = nil
}

func removeStaged(files []stagedFile) {
	for _, f := range files {
		if err := os.Remove(f.tmp); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove staged variant %s: %v", f.tmp, err)
		}
	}
}

// GenerateImage renders every matrix cell for the source at srcPath into
// staged files. Widths larger than the source are clamped, so exactly one
// asset per cell is returned. On error nothing is left behind.
func (g *Generator) GenerateImage(ctx context.Context, slug, srcPath string) (_ *Rendition, err error) {
	start := time.Now()
	defer func() {
		metrics.IngestStageDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	}()

	if err := os.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := g.renderer.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gallery.ErrDecodeFailure, filepath.Base(srcPath), err)
	}
	defer src.Close()

	r := &Rendition{Assets: make([]gallery.Asset, 0, len(g.matrix))}
	defer func() {
		if err != nil {
			r.Discard()
		}
	}()

	for _, v := range g.matrix {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		width := gallery.ClampWidth(v.Width, src.Width())
		data, actual, err := src.Render(width, v.Format, gallery.Quality(v.Format))
		if err != nil {
			return nil, fmt.Errorf("%w: %s at %dpx: %v", gallery.ErrDecodeFailure, v.Format, width, err)
		}

		name := VariantName(slug, v)
		tmp, err := stageFile(g.config.OutputDir, data)
		if err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", name, err)
		}
		r.staged = append(r.staged, stagedFile{tmp: tmp, dst: filepath.Join(g.config.OutputDir, name)})
		metrics.IngestVariantsTotal.WithLabelValues(v.Format.String()).Inc()

		r.Assets = append(r.Assets, gallery.Asset{
			Format:  v.Format,
			WidthPx: actual,
			URL:     g.config.PublicMediaPrefix + "/" + name,
		})
	}

	logging.Debug("Generated %d variants for %s", len(r.Assets), slug)
	return r, nil
}

// VideoAsset points at the original video under the public source prefix.
// relPath is relative to the ingestion root.
func (g *Generator) VideoAsset(relPath string, width int) gallery.Asset {
	segments := strings.Split(filepath.ToSlash(relPath), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return gallery.Asset{
		Format:  gallery.FormatVideo,
		WidthPx: width,
		URL:     g.config.PublicSourcePrefix + "/" + path.Join(segments...),
	}
}

// stageFile writes data to a hidden temp file in dir and returns its path.
func stageFile(dir string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, ".variant-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		logging.Warn("failed to chmod %s: %v", tmpName, err)
	}
	return tmpName, nil
}

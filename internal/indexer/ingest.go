package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"media-gallery/internal/database"
	"media-gallery/internal/gallery"
	"media-gallery/internal/logging"
	"media-gallery/internal/media"
	"media-gallery/internal/memory"
	"media-gallery/internal/mediatypes"
	"media-gallery/internal/metrics"
)

// DefaultFileTimeout bounds the work spent on a single source file.
const DefaultFileTimeout = 2 * time.Minute

// ErrFileTimeout means a file exceeded its processing budget.
var ErrFileTimeout = errors.New("file processing timed out")

// Store persists one item per transaction.
type Store interface {
	SaveItem(ctx context.Context, rec *database.ItemRecord) (database.SaveResult, error)
	// SourcePath returns the source path already owning slug, or "".
	SourcePath(ctx context.Context, slug string) (string, error)
}

// Config tunes an ingestion run.
type Config struct {
	Workers     int
	FileTimeout time.Duration
	// ExcludeDirs are skipped by the walker, normally the output directory.
	ExcludeDirs []string
	// BaseDir, when it contains the ingestion root, is the directory source
	// paths and video URLs are made relative to. Otherwise the root is used.
	BaseDir string
	// Memory, when set, is waited on before each file is started.
	Memory *memory.Guard
}

// Ingester runs the pipeline for one source root at a time.
type Ingester struct {
	store     Store
	extractor *media.Extractor
	generator *media.Generator
	config    Config
	// renders holds one token per running extraction or render. A worker
	// that gives up on a file frees its own slot, but the token stays
	// taken until the abandoned render actually returns.
	renders chan struct{}
}

// New creates an Ingester.
func New(store Store, extractor *media.Extractor, generator *media.Generator, config Config) *Ingester {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.FileTimeout <= 0 {
		config.FileTimeout = DefaultFileTimeout
	}
	return &Ingester{
		store:     store,
		extractor: extractor,
		generator: generator,
		config:    config,
		renders:   make(chan struct{}, config.Workers),
	}
}

// FileError is one file that was skipped.
type FileError struct {
	Path string // relative to the ingestion root
	Err  error
}

// Report summarizes an ingestion run.
type Report struct {
	Root       string
	Type       gallery.ItemType
	Discovered int
	Created    int
	Replaced   int
	Failed     int
	Degraded   int
	Errors     []FileError
	Duration   time.Duration

	mu sync.Mutex
}

func (r *Report) fail(rel string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed++
	r.Errors = append(r.Errors, FileError{Path: rel, Err: err})
}

func (r *Report) saved(res database.SaveResult, degraded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Created {
		r.Created++
	} else {
		r.Replaced++
	}
	if degraded {
		r.Degraded++
	}
}

// Succeeded is the number of files persisted by the run.
func (r *Report) Succeeded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Created + r.Replaced
}

type job struct {
	abs  string
	rel  string
	slug string
	kind mediatypes.Kind
}

// Run ingests every supported file below root as items of itemType. Only a
// missing root or cancellation of ctx make the run itself fail; per-file
// problems are recorded in the report and the run continues.
func (in *Ingester) Run(ctx context.Context, root string, itemType gallery.ItemType) (*Report, error) {
	start := time.Now()
	report := &Report{Root: root, Type: itemType}

	if !itemType.Valid() {
		metrics.IngestRunsTotal.WithLabelValues("aborted").Inc()
		return report, &gallery.ValidationError{Field: "type", Value: itemType.String(), Reason: "unknown item type"}
	}

	files, err := Walk(root, in.config.ExcludeDirs...)
	if err != nil {
		metrics.IngestRunsTotal.WithLabelValues("aborted").Inc()
		return report, err
	}
	report.Discovered = len(files)

	absRoot, _ := filepath.Abs(root)
	logging.Info("Starting ingestion of %d files from %s as %s with %d workers",
		len(files), absRoot, itemType, in.config.Workers)
	metrics.IngestWorkers.Set(float64(in.config.Workers))

	jobs := in.plan(in.relativeBase(absRoot), files, report)

	g := new(errgroup.Group)
	g.SetLimit(in.config.Workers)
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		if err := in.config.Memory.Wait(ctx); err != nil {
			break
		}
		g.Go(func() error {
			in.process(ctx, j, itemType, report)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Errors, func(a, b int) bool { return report.Errors[a].Path < report.Errors[b].Path })
	report.Duration = time.Since(start)
	metrics.IngestLastRunDuration.Set(report.Duration.Seconds())

	if err := ctx.Err(); err != nil {
		metrics.IngestRunsTotal.WithLabelValues("aborted").Inc()
		logging.Warn("Ingestion of %s cancelled after %d of %d files", absRoot, report.Succeeded()+report.Failed, report.Discovered)
		return report, err
	}

	metrics.IngestRunsTotal.WithLabelValues("completed").Inc()
	logging.Info("Ingestion of %s complete in %v: %d discovered, %d created, %d replaced, %d failed (%d degraded)",
		absRoot, report.Duration.Round(time.Millisecond), report.Discovered,
		report.Created, report.Replaced, report.Failed, report.Degraded)
	return report, nil
}

func (in *Ingester) relativeBase(absRoot string) string {
	if in.config.BaseDir == "" {
		return absRoot
	}
	base, err := filepath.Abs(in.config.BaseDir)
	if err != nil {
		return absRoot
	}
	rel, err := filepath.Rel(base, absRoot)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		logging.Warn("Ingestion root %s is outside %s; paths are recorded relative to the root", absRoot, base)
		return absRoot
	}
	return base
}

// plan derives slugs and drops every file that shares its slug with
// another file in the same batch. The survivors keep walk order.
func (in *Ingester) plan(root string, files []string, report *Report) []job {
	bySlug := make(map[string][]job)
	var order []string

	for _, abs := range files {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			rel = abs
		}
		kind := mediatypes.KindOf(abs)

		slug := gallery.DeriveSlug(rel)
		if slug == "" {
			err := fmt.Errorf("%w: no slug can be derived from %q", gallery.ErrDecodeFailure, filepath.Base(rel))
			in.skip(rel, kind, "failed", err, report)
			continue
		}

		if _, seen := bySlug[slug]; !seen {
			order = append(order, slug)
		}
		bySlug[slug] = append(bySlug[slug], job{abs: abs, rel: rel, slug: slug, kind: kind})
	}

	jobs := make([]job, 0, len(files))
	for _, slug := range order {
		group := bySlug[slug]
		if len(group) == 1 {
			jobs = append(jobs, group[0])
			continue
		}

		paths := make([]string, len(group))
		for i, j := range group {
			paths[i] = j.rel
		}
		collision := &gallery.CollisionError{Slug: slug, Paths: paths}
		for _, j := range group {
			in.skip(j.rel, j.kind, "collision", collision, report)
		}
	}
	return jobs
}

func (in *Ingester) skip(rel string, kind mediatypes.Kind, result string, err error, report *Report) {
	logging.Warn("Skipping %s: %v", rel, err)
	metrics.IngestFilesTotal.WithLabelValues(string(kind), result).Inc()
	report.fail(rel, err)
}

type prepared struct {
	md        *media.Metadata
	assets    []gallery.Asset
	rendition *media.Rendition
	err       error
}

// discardLate waits for an abandoned prepare and removes whatever it staged.
func discardLate(done <-chan prepared) {
	if p := <-done; p.rendition != nil {
		p.rendition.Discard()
	}
}

// process runs one file under its own deadline. Extraction and generation
// run in a separate goroutine so a stalled decoder cannot hold the worker
// past the deadline; nothing is persisted once the deadline has passed.
// Rendered variants are only moved into place after the item is committed.
func (in *Ingester) process(ctx context.Context, j job, itemType gallery.ItemType, report *Report) {
	fctx, cancel := context.WithTimeout(ctx, in.config.FileTimeout)
	defer cancel()

	// Check ownership before rendering so a colliding file never overwrites
	// the derived files of the item that owns the slug.
	owner, err := in.store.SourcePath(fctx, j.slug)
	if err != nil {
		in.skip(j.rel, j.kind, "failed", fmt.Errorf("%w: %s: %w", gallery.ErrPersistenceConflict, j.slug, err), report)
		return
	}
	if owner != "" && owner != filepath.ToSlash(j.rel) {
		in.skip(j.rel, j.kind, "collision", &gallery.CollisionError{Slug: j.slug, Paths: []string{owner, filepath.ToSlash(j.rel)}}, report)
		return
	}

	done := make(chan prepared, 1)
	go func() {
		select {
		case in.renders <- struct{}{}:
		case <-fctx.Done():
			done <- prepared{err: fctx.Err()}
			return
		}
		defer func() { <-in.renders }()

		md, assets, rendition, err := in.prepare(fctx, j)
		done <- prepared{md: md, assets: assets, rendition: rendition, err: err}
	}()

	var p prepared
	select {
	case p = <-done:
	case <-fctx.Done():
		go discardLate(done)
		in.skipDeadline(fctx, j, report)
		return
	}

	if p.err != nil {
		if fctx.Err() != nil {
			in.skipDeadline(fctx, j, report)
			return
		}
		in.skip(j.rel, j.kind, "failed", p.err, report)
		return
	}

	rec := &database.ItemRecord{
		Item: gallery.Item{
			Slug:       j.slug,
			Type:       itemType,
			Width:      p.md.Width,
			Height:     p.md.Height,
			BlurData:   p.md.BlurData,
			SourcePath: filepath.ToSlash(j.rel),
		},
		Assets: p.assets,
		I18n:   gallery.IngestTranslations(gallery.DeriveTitle(filepath.Base(j.rel))),
	}

	start := time.Now()
	res, err := in.store.SaveItem(fctx, rec)
	metrics.IngestStageDuration.WithLabelValues("persist").Observe(time.Since(start).Seconds())
	if err != nil {
		p.rendition.Discard()
		result := "failed"
		if errors.Is(err, gallery.ErrSlugCollision) {
			result = "collision"
		}
		in.skip(j.rel, j.kind, result, err, report)
		return
	}

	// The rows are committed; a failed move leaves them pointing at the
	// previous files, and rerunning the file repairs it.
	if err := p.rendition.Publish(); err != nil {
		in.skip(j.rel, j.kind, "failed", err, report)
		return
	}

	result := "replaced"
	if res.Created {
		result = "created"
	}
	metrics.IngestFilesTotal.WithLabelValues(string(j.kind), result).Inc()
	report.saved(res, p.md.Degraded)
	logging.Debug("Ingested %s as %s (%s)", j.rel, j.slug, result)
}

func (in *Ingester) skipDeadline(fctx context.Context, j job, report *Report) {
	if errors.Is(fctx.Err(), context.DeadlineExceeded) {
		in.skip(j.rel, j.kind, "timeout", fmt.Errorf("%w after %v", ErrFileTimeout, in.config.FileTimeout), report)
		return
	}
	in.skip(j.rel, j.kind, "failed", fctx.Err(), report)
}

func (in *Ingester) prepare(ctx context.Context, j job) (*media.Metadata, []gallery.Asset, *media.Rendition, error) {
	md, err := in.extractor.Extract(ctx, j.abs)
	if err != nil {
		return nil, nil, nil, err
	}

	switch j.kind {
	case mediatypes.KindImage:
		r, err := in.generator.GenerateImage(ctx, j.slug, j.abs)
		if err != nil {
			return nil, nil, nil, err
		}
		return md, r.Assets, r, nil
	case mediatypes.KindVideo:
		return md, []gallery.Asset{in.generator.VideoAsset(j.rel, md.Width)}, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: unsupported file %s", gallery.ErrDecodeFailure, j.rel)
	}
}

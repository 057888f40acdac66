package handlers

import (
	"context"
	"time"

	"media-gallery/internal/gallery"
	"media-gallery/internal/query"
)

// GalleryService answers listing requests.
type GalleryService interface {
	List(ctx context.Context, p query.Params) (*query.Page, error)
	Tags(ctx context.Context, locale gallery.Locale) (*query.TagList, error)
}

// Pinger reports whether the store can serve reads.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the settings handlers need from startup.
type Config struct {
	DefaultLocale gallery.Locale
	// OutputDir holds derived variants, SourceDir the originals.
	OutputDir string
	SourceDir string
}

// Handlers serves the gallery HTTP API.
type Handlers struct {
	gallery       GalleryService
	db            Pinger
	defaultLocale gallery.Locale
	outputDir     string
	sourceDir     string
	startTime     time.Time
}

// New creates the handlers.
func New(svc GalleryService, db Pinger, config Config) *Handlers {
	if config.DefaultLocale == "" {
		config.DefaultLocale = gallery.DefaultLocale
	}
	return &Handlers{
		gallery:       svc,
		db:            db,
		defaultLocale: config.DefaultLocale,
		outputDir:     config.OutputDir,
		sourceDir:     config.SourceDir,
		startTime:     time.Now(),
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"media-gallery/internal/database"
	"media-gallery/internal/gallery"
	"media-gallery/internal/indexer"
	"media-gallery/internal/logging"
	"media-gallery/internal/media"
	"media-gallery/internal/memory"
	"media-gallery/internal/startup"
)

// options are the command-line flags of one run.
type options struct {
	root     string
	itemType gallery.ItemType
	workers  int
	timeout  time.Duration
}

func main() {
	config, err := startup.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts, err := parseFlags(os.Args[1:], config, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, config *startup.Config, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("gallery-ingest", flag.ContinueOnError)
	fs.SetOutput(output)

	root := fs.String("root", config.SourceDir, "directory to ingest")
	typeName := fs.String("type", "", "item type: main, students or success")
	workers := fs.Int("workers", config.IngestWorkers, "files processed in parallel")
	timeout := fs.Duration("timeout", config.FileTimeout, "processing budget per file")
	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: gallery-ingest -type <main|students|success> [-root dir] [-workers n] [-timeout d]")
		fmt.Fprintln(output, "")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *typeName == "" {
		return options{}, errors.New("-type is required")
	}
	itemType, err := gallery.ParseItemType(*typeName)
	if err != nil {
		return options{}, err
	}
	if *workers < 1 {
		return options{}, fmt.Errorf("-workers must be at least 1, got %d", *workers)
	}
	if *timeout <= 0 {
		return options{}, fmt.Errorf("-timeout must be positive, got %v", *timeout)
	}

	return options{root: *root, itemType: itemType, workers: *workers, timeout: *timeout}, nil
}

func run(ctx context.Context, config *startup.Config, opts options) error {
	if err := startup.PrepareDatabaseDir(config.DatabaseDir); err != nil {
		return err
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var guard *memory.Guard
	if limit := memory.ConfigureFromEnv(); limit.Configured() {
		guard = memory.NewGuard(limit.HeapBytes)
	}

	if err := media.InitVips(); err != nil {
		return fmt.Errorf("image renderer unavailable: %w", err)
	}
	defer media.ShutdownVips()

	// A nil prober records every video in degraded mode.
	var prober media.VideoProber
	if startup.LogVideoTools() {
		if ff, err := media.NewFFmpeg(); err == nil {
			prober = ff
		} else {
			logging.Warn("Video probing disabled: %v", err)
		}
	}

	db, err := database.New(ctx, filepath.Join(config.DatabaseDir, database.FileName))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("Failed to close database: %v", err)
		}
	}()

	generator := media.NewGenerator(media.VipsRenderer{}, media.GeneratorConfig{
		OutputDir:          config.OutputDir,
		PublicMediaPrefix:  config.PublicMediaPrefix,
		PublicSourcePrefix: config.PublicSourcePrefix,
	})
	in := indexer.New(db, media.NewExtractor(prober), generator, indexer.Config{
		Workers:     opts.workers,
		FileTimeout: opts.timeout,
		ExcludeDirs: []string{config.OutputDir},
		BaseDir:     config.SourceDir,
		Memory:      guard,
	})

	report, err := in.Run(ctx, opts.root, opts.itemType)
	printReport(os.Stdout, report)
	if err != nil {
		return err
	}
	if report.Discovered > 0 && report.Succeeded() == 0 {
		return fmt.Errorf("none of %d files could be ingested", report.Discovered)
	}
	return nil
}

func printReport(w io.Writer, r *indexer.Report) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "Ingested %s as %s in %v\n", r.Root, r.Type, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Discovered: %d\n", r.Discovered)
	fmt.Fprintf(w, "  Created:    %d\n", r.Created)
	fmt.Fprintf(w, "  Replaced:   %d\n", r.Replaced)
	fmt.Fprintf(w, "  Degraded:   %d\n", r.Degraded)
	fmt.Fprintf(w, "  Failed:     %d\n", r.Failed)
	for _, fe := range r.Errors {
		fmt.Fprintf(w, "    %s: %v\n", fe.Path, fe.Err)
	}
}

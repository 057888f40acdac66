package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"media-gallery/internal/database"
	"media-gallery/internal/gallery"
	"media-gallery/internal/startup"
)

// Default timeout for database operations
const defaultTimeout = 30 * time.Second

// store is the subset of the database the commands use.
type store interface {
	UpsertTag(ctx context.Context, slug string, names map[gallery.Locale]string) (*database.Tag, error)
	DeleteTag(ctx context.Context, slug string) error
	TagItem(ctx context.Context, itemSlug, tagSlug string) error
	UntagItem(ctx context.Context, itemSlug, tagSlug string) error
	AllTags(ctx context.Context) ([]database.Tag, error)
	SetI18n(ctx context.Context, slug string, locale gallery.Locale, field gallery.Field, value string) error
}

// errUsage means the arguments did not match the command.
var errUsage = errors.New("invalid arguments")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	config, err := startup.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, filepath.Join(config.DatabaseDir, database.FileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", config.DatabaseDir)
		os.Exit(1)
	}

	err = execute(ctx, db, os.Args[1], os.Args[2:], os.Stdout)
	if closeErr := db.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		}
		os.Exit(1)
	}
}

// execute runs one command against s and writes its output to w.
func execute(ctx context.Context, s store, command string, args []string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	switch command {
	case "upsert":
		if len(args) < 1 {
			return fmt.Errorf("%w: upsert <tag-slug> [locale=name ...]", errUsage)
		}
		names, err := parseNames(args[1:])
		if err != nil {
			return err
		}
		tag, err := s.UpsertTag(ctx, args[0], names)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Tag %s saved\n", tag.Slug)
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("%w: delete <tag-slug>", errUsage)
		}
		if err := s.DeleteTag(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Tag %s deleted\n", args[0])
	case "link":
		if len(args) != 2 {
			return fmt.Errorf("%w: link <item-slug> <tag-slug>", errUsage)
		}
		if err := s.TagItem(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Item %s tagged %s\n", args[0], args[1])
	case "unlink":
		if len(args) != 2 {
			return fmt.Errorf("%w: unlink <item-slug> <tag-slug>", errUsage)
		}
		if err := s.UntagItem(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Item %s untagged %s\n", args[0], args[1])
	case "list":
		tags, err := s.AllTags(ctx)
		if err != nil {
			return err
		}
		printTags(w, tags)
	case "translate":
		if len(args) != 4 {
			return fmt.Errorf("%w: translate <item-slug> <locale> <field> <value>", errUsage)
		}
		locale, err := gallery.ParseLocale(args[1])
		if err != nil {
			return err
		}
		field, err := gallery.ParseField(args[2])
		if err != nil {
			return err
		}
		if err := s.SetI18n(ctx, args[0], locale, field, args[3]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Item %s %s (%s) updated\n", args[0], field, locale)
	default:
		// Sanitize command input using allowlist to break taint chain
		return fmt.Errorf("%w: unknown command %s", errUsage, sanitizeCommand(command))
	}
	return nil
}

// parseNames reads locale=name pairs.
func parseNames(args []string) (map[gallery.Locale]string, error) {
	names := make(map[gallery.Locale]string, len(args))
	for _, arg := range args {
		key, name, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: expected locale=name, got %q", errUsage, arg)
		}
		locale, err := gallery.ParseLocale(key)
		if err != nil {
			return nil, err
		}
		names[locale] = strings.TrimSpace(name)
	}
	return names, nil
}

func printTags(w io.Writer, tags []database.Tag) {
	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags defined")
		return
	}
	for _, t := range tags {
		fmt.Fprintf(w, "%s (%d items)\n", t.Slug, t.Count)
		for _, l := range gallery.SupportedLocales {
			if name, ok := t.Names[l]; ok {
				fmt.Fprintf(w, "  %s: %s\n", l, name)
			}
		}
	}
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Gallery Tag Management")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: gallery-tags <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  upsert <tag> [en=Name pl=Nazwa uk=Назва]  - Create a tag or update its names")
	fmt.Fprintln(w, "  delete <tag>                              - Delete a tag and its links")
	fmt.Fprintln(w, "  link <item> <tag>                         - Attach a tag to an item")
	fmt.Fprintln(w, "  unlink <item> <tag>                       - Detach a tag from an item")
	fmt.Fprintln(w, "  list                                      - List all tags")
	fmt.Fprintln(w, "  translate <item> <locale> <field> <value> - Set a localized title, alt or description")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  DATABASE_DIR - Path to database directory (default: %s)\n", startup.DefaultDatabaseDir)
}

package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"media-gallery/internal/gallery"
	"media-gallery/internal/indexer"
	"media-gallery/internal/startup"
)

func testConfig() *startup.Config {
	return &startup.Config{
		SourceDir:     "/media/gallery",
		IngestWorkers: 4,
		FileTimeout:   time.Minute,
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options
	}{
		{
			name: "defaults from config",
			args: []string{"-type", "main"},
			want: options{root: "/media/gallery", itemType: gallery.ItemTypeMain, workers: 4, timeout: time.Minute},
		},
		{
			name: "explicit values",
			args: []string{"-type", "students", "-root", "/srv/students", "-workers", "2", "-timeout", "30s"},
			want: options{root: "/srv/students", itemType: gallery.ItemTypeStudents, workers: 2, timeout: 30 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, testConfig(), io.Discard)
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing type", nil},
		{"unknown type", []string{"-type", "video"}},
		{"zero workers", []string{"-type", "main", "-workers", "0"}},
		{"negative timeout", []string{"-type", "main", "-timeout", "-1s"}},
		{"positional argument", []string{"-type", "main", "extra"}},
		{"unknown flag", []string{"-type", "main", "-verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFlags(tt.args, testConfig(), io.Discard); err == nil {
				t.Error("parseFlags() succeeded, want error")
			}
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := parseFlags([]string{"-h"}, testConfig(), &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("err = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(out.String(), "Usage: gallery-ingest") {
		t.Errorf("usage not printed: %q", out.String())
	}
}

func TestPrintReport(t *testing.T) {
	r := &indexer.Report{
		Root:       "/media/gallery/main",
		Type:       gallery.ItemTypeMain,
		Discovered: 3,
		Created:    1,
		Replaced:   1,
		Failed:     1,
		Errors:     []indexer.FileError{{Path: "broken.jpg", Err: gallery.ErrDecodeFailure}},
		Duration:   1500 * time.Millisecond,
	}

	var out bytes.Buffer
	printReport(&out, r)

	for _, want := range []string{
		"Ingested /media/gallery/main as main in 1.5s",
		"Discovered: 3",
		"Created:    1",
		"Failed:     1",
		"broken.jpg: " + gallery.ErrDecodeFailure.Error(),
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	printReport(&out, nil)
	if out.Len() != 0 {
		t.Errorf("nil report printed %q", out.String())
	}
}

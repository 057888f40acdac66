package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"media-gallery/internal/database"
	"media-gallery/internal/gallery"
)

type call struct {
	op   string
	args []string
}

type fakeStore struct {
	calls []call
	err   error
}

func (f *fakeStore) record(op string, args ...string) error {
	f.calls = append(f.calls, call{op: op, args: args})
	return f.err
}

func (f *fakeStore) UpsertTag(_ context.Context, slug string, names map[gallery.Locale]string) (*database.Tag, error) {
	args := []string{slug}
	for _, l := range gallery.SupportedLocales {
		if n, ok := names[l]; ok {
			args = append(args, string(l)+"="+n)
		}
	}
	if err := f.record("upsert", args...); err != nil {
		return nil, err
	}
	return &database.Tag{Slug: slug, Names: names}, nil
}

func (f *fakeStore) DeleteTag(_ context.Context, slug string) error {
	return f.record("delete", slug)
}

func (f *fakeStore) TagItem(_ context.Context, item, tag string) error {
	return f.record("link", item, tag)
}

func (f *fakeStore) UntagItem(_ context.Context, item, tag string) error {
	return f.record("unlink", item, tag)
}

func (f *fakeStore) AllTags(context.Context) ([]database.Tag, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return []database.Tag{
		{Slug: "haircut", Count: 2, Names: map[gallery.Locale]string{gallery.LocaleEN: "Haircut", gallery.LocalePL: "Strzyżenie"}},
		{Slug: "unused", Names: map[gallery.Locale]string{}},
	}, nil
}

func (f *fakeStore) SetI18n(_ context.Context, slug string, locale gallery.Locale, field gallery.Field, value string) error {
	return f.record("translate", slug, string(locale), field.String(), value)
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name       string
		command    string
		args       []string
		wantCall   call
		wantOutput string
	}{
		{
			name:       "upsert with names",
			command:    "upsert",
			args:       []string{"haircut", "en=Haircut", "pl= Strzyżenie "},
			wantCall:   call{op: "upsert", args: []string{"haircut", "en=Haircut", "pl=Strzyżenie"}},
			wantOutput: "Tag haircut saved",
		},
		{
			name:       "upsert without names",
			command:    "upsert",
			args:       []string{"color"},
			wantCall:   call{op: "upsert", args: []string{"color"}},
			wantOutput: "Tag color saved",
		},
		{
			name:       "delete",
			command:    "delete",
			args:       []string{"haircut"},
			wantCall:   call{op: "delete", args: []string{"haircut"}},
			wantOutput: "Tag haircut deleted",
		},
		{
			name:       "link",
			command:    "link",
			args:       []string{"kitchen", "haircut"},
			wantCall:   call{op: "link", args: []string{"kitchen", "haircut"}},
			wantOutput: "Item kitchen tagged haircut",
		},
		{
			name:       "unlink",
			command:    "unlink",
			args:       []string{"kitchen", "haircut"},
			wantCall:   call{op: "unlink", args: []string{"kitchen", "haircut"}},
			wantOutput: "Item kitchen untagged haircut",
		},
		{
			name:       "list",
			command:    "list",
			wantCall:   call{op: "list"},
			wantOutput: "haircut (2 items)\n  en: Haircut\n  pl: Strzyżenie\nunused (0 items)",
		},
		{
			name:       "translate",
			command:    "translate",
			args:       []string{"kitchen", "uk", "title", "Кухня"},
			wantCall:   call{op: "translate", args: []string{"kitchen", "uk", "title", "Кухня"}},
			wantOutput: "Item kitchen title (uk) updated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeStore{}
			var out bytes.Buffer
			if err := execute(context.Background(), s, tt.command, tt.args, &out); err != nil {
				t.Fatalf("execute() error = %v", err)
			}
			if len(s.calls) != 1 {
				t.Fatalf("store calls = %+v, want one", s.calls)
			}
			got := s.calls[0]
			if got.op != tt.wantCall.op || strings.Join(got.args, "|") != strings.Join(tt.wantCall.args, "|") {
				t.Errorf("store call = %+v, want %+v", got, tt.wantCall)
			}
			if !strings.Contains(out.String(), tt.wantOutput) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.wantOutput)
			}
		})
	}
}

func TestExecuteUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
	}{
		{"upsert without slug", "upsert", nil},
		{"upsert bad pair", "upsert", []string{"haircut", "Haircut"}},
		{"upsert empty name", "upsert", []string{"haircut", "en="}},
		{"delete extra args", "delete", []string{"a", "b"}},
		{"link one arg", "link", []string{"kitchen"}},
		{"unlink no args", "unlink", nil},
		{"translate short", "translate", []string{"kitchen", "en"}},
		{"unknown command", "rm -rf", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeStore{}
			err := execute(context.Background(), s, tt.command, tt.args, &bytes.Buffer{})
			if !errors.Is(err, errUsage) {
				t.Errorf("err = %v, want errUsage", err)
			}
			if len(s.calls) != 0 {
				t.Errorf("store was called: %+v", s.calls)
			}
		})
	}
}

func TestExecuteValidation(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
	}{
		{"unsupported name locale", "upsert", []string{"haircut", "de=Haarschnitt"}},
		{"unsupported translate locale", "translate", []string{"kitchen", "de", "title", "Küche"}},
		{"unknown field", "translate", []string{"kitchen", "en", "caption", "Kitchen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeStore{}
			if err := execute(context.Background(), s, tt.command, tt.args, &bytes.Buffer{}); err == nil {
				t.Error("execute() succeeded, want error")
			}
			if len(s.calls) != 0 {
				t.Errorf("store was called: %+v", s.calls)
			}
		})
	}
}

func TestExecuteStoreError(t *testing.T) {
	s := &fakeStore{err: sql.ErrNoRows}
	err := execute(context.Background(), s, "delete", []string{"missing"}, &bytes.Buffer{})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestExecuteAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), database.FileName))
	if err != nil {
		t.Fatalf("database.New failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var out bytes.Buffer
	if err := execute(ctx, db, "upsert", []string{"haircut", "en=Haircut", "uk=Стрижка"}, &out); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	out.Reset()
	if err := execute(ctx, db, "list", nil, &out); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := "haircut (0 items)\n  en: Haircut\n  uk: Стрижка\n"
	if out.String() != want {
		t.Errorf("list output = %q, want %q", out.String(), want)
	}

	if err := execute(ctx, db, "link", []string{"missing-item", "haircut"}, &out); err == nil {
		t.Error("linking an unknown item succeeded")
	}
}

func TestPrintTagsEmpty(t *testing.T) {
	var out bytes.Buffer
	printTags(&out, nil)
	if out.String() != "No tags defined\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"list", "list"},
		{"up-sert_2", "up-sert_2"},
		{"rm -rf /", "rm_-rf__"},
		{"bad\ncommand", "bad_command"},
	}
	for _, tt := range tests {
		if got := sanitizeCommand(tt.input); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDerivedFiles(t *testing.T) {
	base := t.TempDir()
	out := filepath.Join(base, "optimized")
	writeTestFile(t, filepath.Join(out, "hair-320.avif"), []byte("avif-bytes"))
	writeTestFile(t, filepath.Join(out, ".variant-123"), []byte("partial"))
	writeTestFile(t, filepath.Join(out, "notes.txt"), []byte("text"))
	writeTestFile(t, filepath.Join(base, "secret.jpg"), []byte("outside"))
	if err := os.MkdirAll(filepath.Join(out, "dir.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	h := New(&mockGallery{}, mockPinger{}, Config{OutputDir: out})
	server := h.DerivedFiles("/media/gallery/optimized/")

	tests := []struct {
		name     string
		target   string
		wantCode int
	}{
		{"variant", "/media/gallery/optimized/hair-320.avif", http.StatusOK},
		{"missing", "/media/gallery/optimized/none-320.avif", http.StatusNotFound},
		{"temp file", "/media/gallery/optimized/.variant-123", http.StatusNotFound},
		{"unsupported extension", "/media/gallery/optimized/notes.txt", http.StatusNotFound},
		{"directory", "/media/gallery/optimized/dir.jpg", http.StatusNotFound},
		{"traversal", "/media/gallery/optimized/../secret.jpg", http.StatusNotFound},
		{"prefix only", "/media/gallery/optimized/", http.StatusNotFound},
		{"other prefix", "/media/other/hair-320.avif", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, http.NoBody))
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if w.Body.String() != "avif-bytes" {
				t.Errorf("body = %q", w.Body.String())
			}
			if got := w.Header().Get("Content-Type"); got != "image/avif" {
				t.Errorf("Content-Type = %q", got)
			}
			if got := w.Header().Get("Cache-Control"); got != MediaCacheControl {
				t.Errorf("Cache-Control = %q", got)
			}
		})
	}
}

func TestSourceFilesRange(t *testing.T) {
	src := t.TempDir()
	video := bytes.Repeat([]byte("0123456789"), 100)
	writeTestFile(t, filepath.Join(src, "students", "Open Day.mp4"), video)

	h := New(&mockGallery{}, mockPinger{}, Config{SourceDir: src})
	server := h.SourceFiles("/media/gallery/source")

	req := httptest.NewRequest(http.MethodGet, "/media/gallery/source/students/Open%20Day.mp4", http.NoBody)
	req.Header.Set("Range", "bytes=10-19")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", w.Code)
	}
	if w.Body.String() != "0123456789" {
		t.Errorf("body = %q", w.Body.String())
	}
	if w.Header().Get("Content-Type") != "video/mp4" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
}

func TestIsSubPath(t *testing.T) {
	tests := []struct {
		parent, child string
		want          bool
	}{
		{"/media/out", "/media/out/a.jpg", true},
		{"/media/out", "/media/out/nested/a.jpg", true},
		{"/media/out", "/media/out", true},
		{"/media/out", "/media/output/a.jpg", false},
		{"/media/out", "/media/a.jpg", false},
		{"/media/out", "/media/out/../a.jpg", false},
		{"/media/out", "/media/out/..hidden.jpg", true},
	}
	for _, tt := range tests {
		if got := isSubPath(tt.parent, tt.child); got != tt.want {
			t.Errorf("isSubPath(%q, %q) = %v, want %v", tt.parent, tt.child, got, tt.want)
		}
	}
}

func TestHasHiddenSegment(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"a.jpg", false},
		{"students/a.jpg", false},
		{".a.jpg", true},
		{".cache/a.jpg", true},
	}
	for _, tt := range tests {
		if got := hasHiddenSegment(tt.rel); got != tt.want {
			t.Errorf("hasHiddenSegment(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

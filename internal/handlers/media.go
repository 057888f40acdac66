package handlers

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"media-gallery/internal/filesystem"
	"media-gallery/internal/logging"
	"media-gallery/internal/mediatypes"
)

// MediaCacheControl applies to derived and original files. URLs are stable
// across re-ingestion while bytes may change, so the lifetime is bounded.
const MediaCacheControl = "public, max-age=86400"

// DerivedFiles serves generated variants below prefix.
func (h *Handlers) DerivedFiles(prefix string) http.Handler {
	return fileServer(prefix, h.outputDir)
}

// SourceFiles serves original media (videos) below prefix.
func (h *Handlers) SourceFiles(prefix string) http.Handler {
	return fileServer(prefix, h.sourceDir)
}

// fileServer serves supported media files only. Hidden entries and anything
// resolving outside root are reported as not found.
func fileServer(prefix, root string) http.Handler {
	prefix = strings.TrimRight(prefix, "/") + "/"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel, ok := strings.CutPrefix(r.URL.Path, prefix)
		if !ok || rel == "" {
			http.NotFound(w, r)
			return
		}

		rel = path.Clean("/" + rel)[1:]
		if hasHiddenSegment(rel) || !mediatypes.IsMediaFile(rel) {
			http.NotFound(w, r)
			return
		}

		fullPath := filepath.Join(root, filepath.FromSlash(rel))
		if !isSubPath(root, fullPath) {
			http.NotFound(w, r)
			return
		}

		info, err := filesystem.StatWithRetry(fullPath, filesystem.DefaultRetryConfig())
		if err != nil || !info.Mode().IsRegular() {
			http.NotFound(w, r)
			return
		}

		f, err := filesystem.OpenWithRetry(fullPath, filesystem.DefaultRetryConfig())
		if err != nil {
			logging.Warn("Failed to open %s: %v", fullPath, err)
			http.Error(w, "Failed to open file", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", mediatypes.GetMimeType(rel))
		w.Header().Set("Cache-Control", MediaCacheControl)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

func hasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func isSubPath(parent, child string) bool {
	parent, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	child, err = filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(parent, child)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

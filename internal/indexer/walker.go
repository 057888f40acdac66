package indexer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"media-gallery/internal/filesystem"
	"media-gallery/internal/gallery"
	"media-gallery/internal/logging"
	"media-gallery/internal/mediatypes"
)

// Walk returns the absolute paths of every supported media file below root,
// sorted lexicographically. Directories listed in exclude are skipped along
// with hidden entries. A missing or unreadable root is ErrSourceNotFound.
func Walk(root string, exclude ...string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gallery.ErrSourceNotFound, root, err)
	}

	info, err := filesystem.StatWithRetry(abs, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gallery.ErrSourceNotFound, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", gallery.ErrSourceNotFound, abs)
	}

	skip := make(map[string]bool, len(exclude))
	for _, dir := range exclude {
		if dir == "" {
			continue
		}
		if d, err := filepath.Abs(dir); err == nil {
			skip[filepath.Clean(d)] = true
		}
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == abs {
				return err
			}
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil // Continue walking
		}

		if path != abs && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if skip[path] {
				logging.Debug("Skipping excluded directory %s", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if mediatypes.IsMediaFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gallery.ErrSourceNotFound, abs, err)
	}

	sort.Strings(files)
	return files, nil
}

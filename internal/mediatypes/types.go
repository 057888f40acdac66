package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind classifies a source file for the ingestion pipeline.
type Kind string

const (
	// KindImage is a still image that gets the full variant matrix.
	KindImage Kind = "image"
	// KindVideo is a video that is registered as-is with a thumbnail placeholder.
	KindVideo Kind = "video"
	// KindOther is anything the pipeline ignores.
	KindOther Kind = "other"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
	".avif": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mov":  true,
	".mp4":  true,
	".webm": true,
	".avi":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".avif": "image/avif",

	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
}

// KindOf classifies a path by its extension, case-insensitively.
func KindOf(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ImageExtensions[ext]:
		return KindImage
	case VideoExtensions[ext]:
		return KindVideo
	default:
		return KindOther
	}
}

// GetMimeType returns the MIME type for a path, or application/octet-stream.
func GetMimeType(path string) string {
	if mime, ok := MimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsMediaFile returns true if the path has a supported image or video extension.
func IsMediaFile(path string) bool {
	return KindOf(path) != KindOther
}

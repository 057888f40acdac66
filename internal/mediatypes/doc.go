// Package mediatypes defines which source files the gallery ingests.
//
// Images (.jpg .jpeg .png .webp .heic .avif) receive the full derivative
// matrix. Videos (.mov .mp4 .webm .avi) are registered untouched with a
// thumbnail-derived placeholder. Matching is by extension, case-insensitively;
// everything else is ignored by the walker.
package mediatypes

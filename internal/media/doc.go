// Package media turns source files into gallery metadata and derived files.
//
// The Extractor reads oriented dimensions and a blur placeholder from images
// (Go decoders first, libvips for HEIC and AVIF) and from videos (ffprobe and
// an ffmpeg frame grab, with a degraded fallback). The Generator renders the
// fixed width×format matrix through a Renderer, normally libvips, and writes
// each file atomically into the output directory.
package media

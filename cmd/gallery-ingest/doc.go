/*
Gallery-ingest walks a source directory and records every supported image
and video as a gallery item.

For each image it writes twelve responsive variants (AVIF, WebP and JPEG at
400, 800, 1200 and 1600 pixels wide) into OUTPUT_DIR. Videos are recorded
with a link to the original file. Every item gets its dimensions, a blur
placeholder and a title derived from the file name. Each item is saved in
its own transaction, so an interrupted run leaves only complete items
behind, and running it again over the same files replaces the stored
variants without touching curated translations.

Usage:

	gallery-ingest -type main [-root /media/gallery/main] [-workers 4] [-timeout 2m]

The flags are:

	-type
		Item type, one of main, students or success. Required.
	-root
		Directory to ingest. Defaults to SOURCE_DIR.
	-workers
		Files processed in parallel. Defaults to INGEST_WORKERS or the CPU count.
	-timeout
		Processing budget per file. Defaults to FILE_TIMEOUT.

Files that fail to decode, time out or share a slug with another file are
reported and skipped. The command exits with status 1 when the run is
interrupted or when no file could be ingested.
*/
package main

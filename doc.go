/*
Gallery serves a localized, paginated media gallery over HTTP.

Items are ingested ahead of time by cmd/gallery-ingest, which writes
responsive image variants into OUTPUT_DIR and records every item in a
SQLite database under DATABASE_DIR. This server only reads that database.

# Endpoints

	GET /gallery                 paginated item listing
	GET /gallery/tags            tags in use with item counts
	GET <PUBLIC_MEDIA_PREFIX>/*  derived image variants
	GET <PUBLIC_SOURCE_PREFIX>/* original video files
	GET /health, /livez, /readyz health probes
	GET /version                 build information

The /gallery listing accepts page, pageSize, locale, type and tag query
parameters. Invalid values are answered with 400 and a JSON body naming
the offending field.

# Signals

SIGHUP drops every cached listing response. SIGINT and SIGTERM shut the
server down gracefully.

# Usage

	docker run -p 8080:8080 \
	  -v /path/to/gallery:/media/gallery \
	  -v /path/to/database:/database \
	  media-gallery

See internal/startup for the full list of environment variables.
*/
package main

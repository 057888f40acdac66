// Package handlers provides the HTTP handlers of the gallery server.
//
// It includes handlers for:
//   - Paginated, localized gallery listing and tag listing
//   - Derived variant and original media files
//   - Health, readiness and version endpoints
//   - Prometheus metrics
package handlers

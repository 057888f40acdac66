// Package memory keeps ingestion inside a container's memory budget.
//
// [ConfigureFromEnv] derives GOMEMLIMIT from MEMORY_LIMIT, normally the
// container limit passed through the Kubernetes Downward API, scaled by
// MEMORY_RATIO (default 0.70). An explicit GOMEMLIMIT always wins.
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
//
// Image decoding happens largely in libvips, outside the Go heap, so the
// ratio is lower than for a pure Go service.
//
// A [Guard] is consulted by the ingester before each file is started. While
// the heap is above 85% of the limit it forces a collection and waits until
// usage falls below 70%.
package memory

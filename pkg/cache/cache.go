// Package cache provides a local cache for rendered artifacts.
//
// Rendering a large system through the graphviz engine (and, for PDF,
// the external converter) is the slow part of a CLI run. Artifacts are
// keyed by a hash of the system document plus the depth cutoff and all
// render options, so re-rendering the same system at the same depth is
// a cache hit while any change to the input or options misses.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long cached artifacts stay valid.
const DefaultTTL = 7 * 24 * time.Hour

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// RenderKeyOpts are the render options that participate in the cache
// key. Two renders with equal system hash and equal opts produce
// identical artifacts.
type RenderKeyOpts struct {
	MaxDepth int
	Format   string
	Legend   bool
	TxtWidth int
	FontSize int
	Attrs    map[string]string
}

// RenderKey generates the cache key for a rendered artifact.
func RenderKey(systemHash string, opts RenderKeyOpts) string {
	return hashKey("render", systemHash, opts)
}

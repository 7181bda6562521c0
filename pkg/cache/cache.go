// Package cache provides pluggable byte caches and key derivation for
// layout and render artifacts.
//
// Caching is a view-side memoization: layouts for an unchanged chain and
// unchanged tunables are expensive to recompute and cheap to store. The
// chain content hash plus the layout options form the key, so any edit to
// the chain or its tunables naturally invalidates the entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache with optional TTL.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// LayoutKeyOpts are the layout tunables that participate in the layout
// cache key. Any field change produces a different key.
type LayoutKeyOpts struct {
	Strategy      string  `json:"strategy"`
	MinSeparation float64 `json:"min_separation"`
	Passes        int     `json:"passes"`
	Randomize     bool    `json:"randomize"`
	Seed          uint64  `json:"seed"`
	RankDir       string  `json:"rank_dir"`
}

// ArtifactKeyOpts are the render parameters that participate in the
// artifact cache key.
type ArtifactKeyOpts struct {
	Format   string   `json:"format"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Scale    float64  `json:"scale"`
	Query    string   `json:"query"`
	AllowIDs []string `json:"allow_ids,omitempty"`
	Focus    bool     `json:"focus,omitempty"`
}

// Keyer derives cache keys from content hashes and options.
type Keyer interface {
	// LayoutKey generates a key for computed node positions.
	LayoutKey(chainHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for rendered artifacts.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the options into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for computed node positions.
func (k *DefaultKeyer) LayoutKey(chainHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", chainHash, opts)
}

// ArtifactKey generates a key for rendered artifacts.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

// Package cache provides pluggable byte caching for pipeline stages.
//
// The [Cache] interface abstracts the storage backend so the same pipeline
// code runs against a local file cache (CLI), Redis (server deployments),
// or no cache at all (tests, --no-cache). Values are opaque byte slices;
// callers serialize before storing.
//
// The [Keyer] interface builds the cache keys for each pipeline stage:
// generation results keyed by prompt and model, layouts keyed by graph
// content, and export artifacts keyed by layout content. Keys hash their
// inputs so prompts and graph payloads of any size produce safe,
// fixed-length keys. [ScopedKeyer] prefixes keys for multi-tenant
// deployments where users must not share cache entries.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Generation results expire daily since
// model behavior drifts; layouts and artifacts derive deterministically
// from their inputs and keep longer.
const (
	TTLGenerate = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss.
// Errors indicate backend failures, not misses; callers typically treat
// errors as misses and recompute.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GenerateKeyOpts are the options that change a generation result.
type GenerateKeyOpts struct {
	Type        string  // diagram type requested
	Temperature float64 // sampling temperature
}

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	Type      string // diagram type
	Style     string // layout style
	Direction string // layered axis override
}

// ArtifactKeyOpts are the options that change an exported artifact.
type ArtifactKeyOpts struct {
	Format string // export format (svg, png, dot, ...)
	Theme  string // render theme
}

// Keyer generates cache keys for pipeline stages.
// Implementations must be deterministic: identical inputs produce
// identical keys.
type Keyer interface {
	// HTTPKey generates a key for HTTP response caching.
	HTTPKey(namespace, key string) string

	// GenerateKey generates a key for model generation results.
	GenerateKey(model, promptHash string, opts GenerateKeyOpts) string

	// LayoutKey generates a key for layout caching.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for artifact caching.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
// All stage keys embed a SHA-256 hash of their inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// GenerateKey generates a key for model generation results.
func (k *DefaultKeyer) GenerateKey(model, promptHash string, opts GenerateKeyOpts) string {
	return hashKey("generate", model, promptHash, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

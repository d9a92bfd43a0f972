package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrawl/pkg/ai"
	"github.com/matzehuels/scrawl/pkg/cache"
	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, the generator, and the
// logger - it doesn't store pipeline results. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Generator *ai.Generator
	Logger    *log.Logger
}

// NewRunner creates a runner with the given cache, keyer, and generator.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The generator may be nil for layout-only and export-only use.
func NewRunner(c cache.Cache, keyer cache.Keyer, gen *ai.Generator, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Generator: gen,
		Logger:    logger,
	}
}

// Execute runs the complete generate → layout → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}
	obs := observability.Pipeline()

	// Stage 1: Generate
	genStart := time.Now()
	obs.OnGenerateStart(ctx, opts.Type)
	g, usage, genHit, err := r.GenerateWithCacheInfo(ctx, opts)
	obs.OnGenerateComplete(ctx, opts.Type, len(g.Nodes), usage.TotalTokens, time.Since(genStart), err)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Usage = usage
	result.Stats.GenerateTime = time.Since(genStart)
	result.CacheInfo.GenerateHit = genHit

	// Content hash of the generated graph, for cache keys and API responses
	if graphData, err := graph.Marshal(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("generated diagram",
		"type", g.Type,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"tokens", usage.TotalTokens,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	obs.OnLayoutStart(ctx, opts.Type, len(g.Nodes))
	placed, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	obs.OnLayoutComplete(ctx, opts.Type, time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = placed
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(placed.Nodes)
	result.Stats.EdgeCount = len(placed.Edges)
	result.Stats.Crossings = Crossings(placed)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"style", opts.Style,
		"crossings", result.Stats.Crossings,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Export
	exportStart := time.Now()
	obs.OnExportStart(ctx, opts.Formats)
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, placed, opts)
	obs.OnExportComplete(ctx, opts.Formats, time.Since(exportStart), err)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// GenerateWithCacheInfo generates a diagram graph with caching and returns
// cache hit info. Cached generations report zero token usage.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (graph.Graph, ai.Usage, bool, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return graph.Graph{}, ai.Usage{}, false, err
	}
	r.applyLogger(&opts)

	// The generate key covers everything that changes the output: prompt,
	// diagram type, model, and temperature.
	var cacheKey string
	if r.Generator != nil && r.Generator.Client != nil {
		promptHash := cache.Hash([]byte(opts.Prompt))
		cacheKey = r.Keyer.GenerateKey(r.Generator.Client.Model(), promptHash,
			opts.GenerateKeyOpts(r.Generator.Client.Temperature()))
	}

	// Try cache first (unless refresh requested)
	if cacheKey != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := graph.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "generate")
				return cached, ai.Usage{}, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "generate")
	}

	g, usage, err := Generate(ctx, r.Generator, opts)
	if err != nil {
		return graph.Graph{}, usage, false, err
	}

	if cacheKey != "" {
		if data, err := graph.Marshal(g); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGenerate); err == nil {
				observability.Cache().OnCacheSet(ctx, "generate", len(data))
			}
		}
	}

	return g, usage, false, nil // Cache miss
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (graph.Graph, ai.Usage, error) {
	g, usage, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return g, usage, err
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit
// info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (graph.Graph, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Graph{}, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from graph content
	graphData, _ := graph.Marshal(g)
	graphHash := cache.Hash(graphData)
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := graph.Unmarshal(data)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	placed := ComputeLayout(g, opts)

	if data, err := graph.Marshal(placed); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return placed, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g graph.Graph, opts Options) (graph.Graph, error) {
	placed, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return placed, err
}

// ExportWithCacheInfo renders artifacts with caching and returns cache hit
// info. The hit flag reports whether every requested format came from
// cache.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from the placed graph
	layoutData, err := graph.Marshal(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered, err := ExportArtifacts(g, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Export(ctx context.Context, g graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

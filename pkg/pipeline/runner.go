package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Rishikoli/chaingraph/pkg/cache"
	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/highlight"
	"github.com/Rishikoli/chaingraph/pkg/layout"
	"github.com/Rishikoli/chaingraph/pkg/observability"
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use it so caching logic lives in
// one place.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, chains []chain.Chain, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := r.Logger.With("run_id", result.RunID)

	// Stage 1: Build
	buildStart := time.Now()
	s := scene.Build(chains...)
	result.Scene = s
	result.ChainHash = chain.Hash(chains...)
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = s.NodeCount()
	result.Stats.EdgeCount = s.EdgeCount()

	logger.Info("built scene",
		"chains", len(chains),
		"nodes", s.NodeCount(),
		"edges", s.EdgeCount(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	pos, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, s, result.ChainHash, opts)
	if err != nil {
		return nil, err
	}
	result.Positions = pos
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"strategy", opts.Strategy,
		"cache_hit", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Highlight is a pure view computation; no caching needed.
	if crit := opts.HighlightCriteria(); !crit.Empty() {
		result.Highlight = highlight.Apply(s, crit)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s, pos, result.Highlight, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cache_hit", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes positions with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, s *scene.Scene, chainHash string, opts Options) (layout.Positions, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LayoutKey(chainHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Positions
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// Corrupt entry, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	engine, err := layout.EngineFor(opts.Strategy, opts.ForceOptions(), opts.LayeredOptions())
	if err != nil {
		return nil, false, err
	}
	orc := layout.NewOrchestrator(engine, layout.WithOverlapOptions(opts.SeparateOptions()))
	pos, err := orc.Run(ctx, s)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeLayoutFailed, err, "compute %s layout", opts.Strategy)
	}

	if data, err := json.Marshal(pos); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return pos, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, s *scene.Scene, chainHash string, opts Options) (layout.Positions, error) {
	pos, _, err := r.ComputeLayoutWithCacheInfo(ctx, s, chainHash, opts)
	return pos, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *scene.Scene, pos layout.Positions, hl highlight.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Key artifacts off the positions so a re-layout invalidates them.
	posData, err := json.Marshal(pos)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize positions for cache key")
	}
	layoutHash := cache.Hash(posData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := Render(ctx, s, pos, hl, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// applyLogger copies the runner logger into the options when the caller
// didn't provide one.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

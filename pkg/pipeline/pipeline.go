// Package pipeline provides the core visualization pipeline for fraud
// chains.
//
// This package implements the complete build → layout → render pipeline
// used by the CLI commands and the preview server. Centralizing it here
// keeps caching and defaults consistent across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Assemble the scene graph from one or more chains
//  2. Layout: Compute node positions with the selected strategy,
//     resolve residual overlaps, and fit
//  3. Render: Generate output in various formats (SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Strategy: "force",
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, chains, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Rishikoli/chaingraph/pkg/cache"
	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/highlight"
	"github.com/Rishikoli/chaingraph/pkg/layout"
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultStrategy is the layout strategy used when none is requested.
	DefaultStrategy = layout.StrategyForce

	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultScale is the raster density multiplier for PNG output.
	DefaultScale = 2.0

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)
)

// Cache TTLs per artifact kind. Layouts are cheap to keep around; rendered
// artifacts churn with styling changes so they expire sooner.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 6 * time.Hour
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ValidStrategies is the set of supported layout strategies.
var ValidStrategies = map[string]bool{
	layout.StrategyForce:   true,
	layout.StrategyLayered: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Layout options
	Strategy      string  `json:"strategy,omitempty"`
	MinSeparation float64 `json:"min_separation,omitempty"`
	Passes        int     `json:"passes,omitempty"`
	Randomize     bool    `json:"randomize,omitempty"`
	Seed          uint64  `json:"seed,omitempty"`
	RankDir       string  `json:"rank_dir,omitempty"`
	Refresh       bool    `json:"refresh,omitempty"`

	// Highlight options
	Query    string   `json:"query,omitempty"`
	AllowIDs []string `json:"allow_ids,omitempty"`
	Focus    bool     `json:"focus,omitempty"`

	// Render options
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this execution in logs.
	RunID string

	// Scene is the assembled element graph.
	Scene *scene.Scene

	// ChainHash is the content hash of the input chains.
	ChainHash string

	// Positions are the computed node coordinates in model space.
	Positions layout.Positions

	// Highlight is the applied highlight result, empty when no criteria
	// were given.
	Highlight highlight.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether node positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a layout strategy is valid.
func ValidateStrategy(strategy string) error {
	if !ValidStrategies[strategy] {
		return errors.New(errors.ErrCodeInvalidStrategy,
			"invalid strategy: %q (must be one of: force, layered)", strategy)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	sep := layout.DefaultSeparateOptions()
	if o.MinSeparation == 0 {
		o.MinSeparation = sep.MinSeparation
	}
	if o.Passes == 0 {
		o.Passes = sep.MaxPasses
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.RankDir == "" {
		o.RankDir = string(layout.RankTopBottom)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateStrategy(o.Strategy)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// HighlightCriteria converts the highlight options to engine criteria.
func (o *Options) HighlightCriteria() highlight.Criteria {
	return highlight.Criteria{Query: o.Query, AllowIDs: o.AllowIDs, Focus: o.Focus}
}

// SeparateOptions converts the overlap tunables to resolver options.
func (o *Options) SeparateOptions() layout.SeparateOptions {
	sep := layout.DefaultSeparateOptions()
	sep.MinSeparation = o.MinSeparation
	sep.MaxPasses = o.Passes
	return sep
}

// ForceOptions converts the layout tunables to force engine options.
func (o *Options) ForceOptions() layout.ForceOptions {
	f := layout.DefaultForceOptions()
	f.Randomize = o.Randomize
	f.Seed = o.Seed
	return f
}

// LayeredOptions converts the layout tunables to layered engine options.
func (o *Options) LayeredOptions() layout.LayeredOptions {
	l := layout.DefaultLayeredOptions()
	l.RankDir = layout.RankDir(o.RankDir)
	return l
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy:      o.Strategy,
		MinSeparation: o.MinSeparation,
		Passes:        o.Passes,
		Randomize:     o.Randomize,
		Seed:          o.Seed,
		RankDir:       o.RankDir,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Width:    o.Width,
		Height:   o.Height,
		Scale:    o.Scale,
		Query:    o.Query,
		AllowIDs: o.AllowIDs,
		Focus:    o.Focus,
	}
}

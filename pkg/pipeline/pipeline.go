// Package pipeline provides the core diagram pipeline for Scrawl.
//
// This package implements the complete generate → layout → export pipeline
// that can be used by the CLI, the API server, and the interactive wizard.
// Centralizing it keeps behavior and caching identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Generate: Turn a natural-language prompt into a diagram graph
//  2. Layout: Compute positions and edge styles for the graph
//  3. Export: Render the placed graph into output formats (SVG, DOT, ...)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, gen, logger)
//	opts := pipeline.Options{
//	    Prompt:  "user signup flow with email verification",
//	    Type:    "flowchart",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Generate only
//	g, err := runner.Generate(ctx, opts)
//
//	// Layout an existing graph
//	placed, err := runner.Layout(ctx, g, opts)
//
//	// Export a placed graph
//	artifacts, err := runner.Export(ctx, placed, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrawl/pkg/ai"
	"github.com/matzehuels/scrawl/pkg/cache"
	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/export"
	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Wizard
// =============================================================================

// DefaultType is the diagram type used when a request does not name one.
const DefaultType = graph.TypeFlowchart

// DefaultStyle is the layout style used when a request does not name one.
const DefaultStyle = graph.StyleHierarchical

// DefaultFormat is the export format used when a request names none.
const DefaultFormat = string(export.FormatSVG)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Generate options
	Prompt  string `json:"prompt,omitempty"`
	Type    string `json:"type,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	Style     string `json:"style,omitempty"`
	Direction string `json:"direction,omitempty"` // layered axis override ("TB", "LR")

	// Export options
	Formats    []string `json:"formats,omitempty"`
	Title      string   `json:"title,omitempty"`
	Background string   `json:"background,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"` // include node details in exports

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the generated and placed diagram snapshot.
	Graph graph.Graph

	// GraphHash is the content hash of the generated graph, before layout.
	GraphHash string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Usage tracks model token consumption for the generate stage.
	// Zero when the generation came from cache.
	Usage ai.Usage

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	Crossings    int // edge crossings in the layered order
	GenerateTime time.Duration
	LayoutTime   time.Duration
	ExportTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool // Whether the generated graph came from cache
	LayoutHit   bool // Whether the placed graph came from cache
	ExportHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateType checks that a diagram type is valid.
func ValidateType(typ string) error {
	if !graph.ValidType(typ) {
		return errors.New(errors.ErrCodeInvalidType,
			"invalid type: %q (must be one of: flowchart, mindmap, erd, orgchart)", typ)
	}
	return nil
}

// ValidateStyle checks that a layout style is valid.
func ValidateStyle(style string) error {
	if !graph.ValidStyle(style) {
		return errors.New(errors.ErrCodeInvalidStyle,
			"invalid style: %q (must be one of: tree, radial, hierarchical, circular, network)", style)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := export.ParseFormat(f); err != nil {
			return err
		}
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
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForGenerate checks required fields for generation.
func (o *Options) ValidateForGenerate() error {
	if err := errors.ValidatePrompt(o.Prompt); err != nil {
		return err
	}
	if o.Type == "" {
		o.Type = DefaultType
	}
	o.setLogger()
	return ValidateType(o.Type)
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if o.Type == "" {
		o.Type = DefaultType
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	o.setLogger()
	if err := ValidateType(o.Type); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// ValidateForExport validates and sets defaults for exporting. Format
// aliases are rewritten to canonical names so cache keys and artifact map
// keys agree regardless of how the caller spelled the format.
func (o *Options) ValidateForExport() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
	for i, f := range o.Formats {
		parsed, err := export.ParseFormat(f)
		if err != nil {
			return err
		}
		o.Formats[i] = string(parsed)
	}
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions converts pipeline options into layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	cfg := layout.DefaultConfig()
	cfg.Direction = layout.Direction(o.Direction)
	return layout.Options{
		Type:   o.Type,
		Style:  o.Style,
		Config: cfg,
	}
}

// ExportOptions converts pipeline options into export options.
func (o *Options) ExportOptions() export.Options {
	return export.Options{
		Title:      o.Title,
		Background: o.Background,
		Detailed:   o.Detailed,
	}
}

// GenerateKeyOpts returns cache key options for the generate stage.
func (o *Options) GenerateKeyOpts(temperature float64) cache.GenerateKeyOpts {
	return cache.GenerateKeyOpts{
		Type:        o.Type,
		Temperature: temperature,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Type:      o.Type,
		Style:     o.Style,
		Direction: o.Direction,
	}
}

// ArtifactKeyOpts returns cache key options for artifact export.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Theme:  o.Background,
	}
}

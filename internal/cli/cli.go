// Package cli implements the scrawl command-line interface.
//
// This package provides commands for generating diagrams from natural-
// language prompts, laying out and exporting graph snapshots, serving the
// HTTP API, and managing saved diagrams and the result cache. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - generate: Turn a prompt into a laid-out diagram and export it
//   - layout: Compute coordinates for an existing graph snapshot
//   - export: Render a graph snapshot to SVG, PNG, DOT, draw.io, or Mermaid
//   - wizard: Interactive prompt-to-diagram flow
//   - serve: Run the HTTP API
//   - diagrams: Manage saved diagrams
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the CLI struct and is shared by every command.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scrawl/pkg/ai"
	"github.com/matzehuels/scrawl/pkg/buildinfo"
	"github.com/matzehuels/scrawl/pkg/cache"
	"github.com/matzehuels/scrawl/pkg/config"
	"github.com/matzehuels/scrawl/pkg/pipeline"
	"github.com/matzehuels/scrawl/pkg/store"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag value; empty means the default path.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "scrawl",
		Short:        "Scrawl turns natural-language prompts into laid-out diagrams",
		Long:         `Scrawl is an AI-assisted diagram builder: describe a flowchart, mind map, ERD, or org chart in plain language and get a deterministically laid-out diagram as SVG, PNG, DOT, draw.io, or Mermaid output.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: ~/.config/scrawl/config.toml)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.wizardCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.diagramsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once and caches it for the process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. withGenerator wires the
// model client from configuration; layout- and export-only commands skip it.
func (c *CLI) newRunner(ctx context.Context, noCache, withGenerator bool) (*pipeline.Runner, error) {
	cch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	var gen *ai.Generator
	if withGenerator {
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		client := ai.NewClient(ai.Config{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey(),
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		}, nil)
		gen = ai.NewGenerator(client, c.Logger)
	}

	return pipeline.NewRunner(cch, nil, gen, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	}

	dir, err := c.cacheLocation()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheLocation resolves the file cache directory: the configured one, or
// the XDG default (~/.cache/scrawl).
func (c *CLI) cacheLocation() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Store Factory
// =============================================================================

// newStore creates the diagram store selected by configuration.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend == "mongo" {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDatabase,
		})
	}
	return store.NewFileStore(cfg.Store.Dir)
}

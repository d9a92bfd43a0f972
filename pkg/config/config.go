// Package config loads and validates Scrawl configuration.
//
// Configuration lives in a TOML file, by default at
// ~/.config/scrawl/config.toml. Every field has a sensible default so an
// absent file yields a fully working configuration; the CLI and server
// only require an API key (via environment) to generate diagrams.
//
// [Loader] adds hot reloading on top of [Load] for long-running server
// processes: it watches the file and swaps in the new configuration when
// it changes on disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/layout"
)

// Config is the top-level TOML structure.
type Config struct {
	AI     AIConfig     `toml:"ai"`
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// AIConfig holds model API settings.
type AIConfig struct {
	BaseURL        string  `toml:"base_url"`        // chat completions endpoint base
	Model          string  `toml:"model"`           // model identifier
	APIKeyEnv      string  `toml:"api_key_env"`     // env var holding the API key
	Temperature    float64 `toml:"temperature"`     // sampling temperature
	MaxTokens      int     `toml:"max_tokens"`      // completion token cap
	TimeoutSeconds int     `toml:"timeout_seconds"` // per-request timeout
}

// APIKey resolves the API key from the configured environment variable.
func (c AIConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// LayoutConfig holds engine spacing overrides. Zero values fall back to
// the engine defaults.
type LayoutConfig struct {
	Direction  string   `toml:"direction"` // "", "TB", or "LR"
	NodeGap    float64  `toml:"node_gap"`
	LayerGap   float64  `toml:"layer_gap"`
	SlotHeight float64  `toml:"slot_height"`
	BranchGap  float64  `toml:"branch_gap"`
	RingGap    float64  `toml:"ring_gap"`
	CellWidth  float64  `toml:"cell_width"`
	CellHeight float64  `toml:"cell_height"`
	Palette    []string `toml:"palette"`
	EdgeStroke string   `toml:"edge_stroke"`
	EdgeWidth  float64  `toml:"edge_width"`
}

// Engine converts the file values into a layout.Config. Unset values stay
// zero and are defaulted by the engine itself.
func (l LayoutConfig) Engine() layout.Config {
	return layout.Config{
		Direction:  layout.Direction(l.Direction),
		NodeGap:    l.NodeGap,
		LayerGap:   l.LayerGap,
		SlotHeight: l.SlotHeight,
		BranchGap:  l.BranchGap,
		RingGap:    l.RingGap,
		CellWidth:  l.CellWidth,
		CellHeight: l.CellHeight,
		Palette:    l.Palette,
		EdgeStroke: l.EdgeStroke,
		EdgeWidth:  l.EdgeWidth,
	}
}

// CacheConfig selects and configures the cache backend. Caching is on by
// default; Disabled turns it off entirely.
type CacheConfig struct {
	Disabled      bool   `toml:"disabled"`
	Dir           string `toml:"dir"`            // file backend dir; "" = ~/.cache/scrawl
	RedisAddr     string `toml:"redis_addr"`     // when set, use Redis instead of files
	RedisPassword string `toml:"redis_password"` //
	RedisDB       int    `toml:"redis_db"`       //
}

// StoreConfig selects and configures the diagram store backend.
type StoreConfig struct {
	Backend       string `toml:"backend"`        // "file" or "mongo"
	Dir           string `toml:"dir"`            // file backend dir; "" = ~/.local/share/scrawl
	MongoURI      string `toml:"mongo_uri"`      //
	MongoDatabase string `toml:"mongo_database"` //
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr                string `toml:"addr"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			Temperature:    0.2,
			MaxTokens:      4096,
			TimeoutSeconds: 60,
		},
		Store: StoreConfig{
			Backend:       "file",
			MongoDatabase: "scrawl",
		},
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 60,
		},
	}
}

// DefaultPath returns ~/.config/scrawl/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "scrawl", "config.toml"), nil
}

// Load reads the configuration file at path, applies defaults for unset
// fields, and validates the result. If path is empty, the default path is
// used; a missing file at the default path returns Default() without error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset fields from Default().
func (c *Config) applyDefaults() {
	def := Default()
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = def.AI.BaseURL
	}
	if c.AI.Model == "" {
		c.AI.Model = def.AI.Model
	}
	if c.AI.APIKeyEnv == "" {
		c.AI.APIKeyEnv = def.AI.APIKeyEnv
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = def.AI.MaxTokens
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = def.AI.TimeoutSeconds
	}
	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	if c.Store.MongoDatabase == "" {
		c.Store.MongoDatabase = def.Store.MongoDatabase
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = def.Server.ReadTimeoutSeconds
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = def.Server.WriteTimeoutSeconds
	}
}

// Validate checks field values that have constrained domains.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.AI.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "ai.base_url")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "ai.temperature must be in [0, 2], got %v", c.AI.Temperature)
	}
	if c.AI.MaxTokens < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "ai.max_tokens must be positive, got %d", c.AI.MaxTokens)
	}
	switch c.Store.Backend {
	case "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend must be file or mongo, got %q", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
	}
	switch c.Layout.Direction {
	case "", "TB", "LR":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "layout.direction must be TB or LR, got %q", c.Layout.Direction)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scrawl/internal/server"
	"github.com/matzehuels/scrawl/pkg/config"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

The server exposes the generate, layout and export operations under
/api/v1, diagram persistence under /api/v1/diagrams, and Prometheus
metrics under /metrics. Settings come from the config file; pass
--config to point at one.

With --watch the config file is monitored and the server restarts
gracefully when it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "restart the server when the config file changes")

	return cmd
}

// runServe starts the server, optionally restarting it on config changes.
func (c *CLI) runServe(ctx context.Context, addr string, watch bool) error {
	if !watch {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		return c.serveOnce(ctx, overrideAddr(cfg, addr))
	}

	if c.ConfigPath == "" {
		return fmt.Errorf("--watch requires --config")
	}
	loader, err := config.NewLoader(c.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", c.ConfigPath, err)
	}

	// A buffered channel of one coalesces bursts of file events into a
	// single restart.
	reload := make(chan struct{}, 1)
	loader.OnChange(func(*config.Config) {
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	stop, err := loader.Watch()
	if err != nil {
		return fmt.Errorf("watch config %s: %w", c.ConfigPath, err)
	}
	defer stop()

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- c.serveOnce(runCtx, overrideAddr(loader.Config(), addr))
		}()

		select {
		case <-reload:
			c.Logger.Info("config changed, restarting server", "path", c.ConfigPath)
			cancel()
			if err := <-done; err != nil {
				return err
			}
		case err := <-done:
			cancel()
			return err
		}
	}
}

// serveOnce builds a server from the config and runs it until ctx is
// cancelled or the listener fails.
func (c *CLI) serveOnce(ctx context.Context, cfg *config.Config) error {
	srv, err := server.FromConfig(ctx, cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}
	defer srv.Close()

	printInfo("Serving on %s", StyleLink.Render("http://"+cfg.Server.Addr))
	printDetail("API: /api/v1, metrics: /metrics")
	return srv.Run(ctx)
}

// overrideAddr copies cfg with the listen address replaced when addr is
// set. The copy keeps a reloading watcher's shared config unmodified.
func overrideAddr(cfg *config.Config, addr string) *config.Config {
	if addr == "" {
		return cfg
	}
	out := *cfg
	out.Server.Addr = addr
	return &out
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegrid/pkg/api"
	"github.com/matzehuels/sitegrid/pkg/observability"
	"github.com/matzehuels/sitegrid/pkg/session"
)

// serveOpts holds flag overrides for the serve command.
type serveOpts struct {
	addr      string
	store     string
	storePath string
	noMetrics bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the layout API for the web client.

The session store and cache come from the config file and the environment:
MONGO_URI selects MongoDB, DATABASE_URL selects Postgres, REDIS_URL enables
the Redis layout cache, and PORT sets the listen port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :3001)")
	cmd.Flags().StringVar(&opts.store, "store", "", "session store: memory, file, sqlite, postgres, mongo")
	cmd.Flags().StringVar(&opts.storePath, "store-path", "", "directory (file) or database file (sqlite)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.store != "" {
		cfg.Store.Driver = opts.store
	}
	if opts.storePath != "" {
		cfg.Store.Path = opts.storePath
	}
	if opts.noMetrics {
		cfg.Server.Metrics = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var serverOpts []api.Option
	if cfg.Server.Metrics {
		prom := observability.NewPrometheus()
		prom.Install()
		serverOpts = append(serverOpts, api.WithMetrics(prom.Handler()))
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := session.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Driver,
		"devices", runner.Engine.Catalog().Len(),
		"metrics", cfg.Server.Metrics)

	serverOpts = append(serverOpts, api.WithLogger(c.Logger), api.WithConfig(cfg.Server))
	return api.New(runner, store, serverOpts...).ListenAndServe(ctx)
}

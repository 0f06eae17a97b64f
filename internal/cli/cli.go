// Package cli implements the sitegrid command-line interface.
//
// The CLI calculates site layouts from battery quantities, renders them to
// the terminal or to SVG/PNG/PDF files, saves configurations as sessions,
// and serves the HTTP API. It is built on cobra and logs with
// charmbracelet/log.
//
// # Commands
//
//   - calc: Validate quantities and print or render the site plan
//   - devices: List the device catalog
//   - serve: Run the HTTP API
//   - session: Save, load, list and pick saved configurations
//   - cache: Manage the local layout cache
//
// # Configuration
//
// All commands read an optional TOML file given by --config, then the
// environment (PORT, MONGO_URI, DATABASE_URL, REDIS_URL, ...). Command
// flags override both.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegrid/pkg/buildinfo"
	"github.com/matzehuels/sitegrid/pkg/cache"
	"github.com/matzehuels/sitegrid/pkg/catalog"
	"github.com/matzehuels/sitegrid/pkg/config"
	"github.com/matzehuels/sitegrid/pkg/httputil"
	"github.com/matzehuels/sitegrid/pkg/pipeline"
	"github.com/matzehuels/sitegrid/pkg/plan"
	"github.com/matzehuels/sitegrid/pkg/render"
	"github.com/matzehuels/sitegrid/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sitegrid"

	// catalogTTL is how long a fetched remote catalog is reused.
	catalogTTL = 24 * time.Hour
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

	configPath  string
	catalogPath string

	// convert re-encodes SVG as png or pdf.
	convert func(svg []byte, format string) ([]byte, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), convert: render.Convert}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sitegrid plans battery site layouts",
		Long:         `Sitegrid calculates the transformers, cost, energy and physical grid layout of a battery installation from the number of each battery type.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "path or http(s) URL of a TOML device catalog (overrides config)")

	root.AddCommand(c.calcCommand())
	root.AddCommand(c.devicesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads --config and the environment, then applies --catalog.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.catalogPath != "" {
		cfg.Catalog = c.catalogPath
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if lvl, err := cfg.LogLevel(); err == nil && c.Logger.GetLevel() > lvl {
		c.Logger.SetLevel(lvl)
	}
	return cfg, nil
}

// newEngine builds the layout engine for cfg. Remote catalogs are kept in
// the cache directory for catalogTTL.
func newEngine(ctx context.Context, cfg config.Config) (*plan.Engine, error) {
	cat := catalog.Default()
	if cfg.Catalog != "" {
		var client *httputil.Client
		if catalog.IsRemote(cfg.Catalog) {
			client = httputil.NewClient(catalogCache())
		}
		var err error
		if cat, err = catalog.Open(ctx, cfg.Catalog, client); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	return plan.New(cat,
		plan.WithColumns(cfg.Layout.Columns),
		plan.WithMaxQuantity(cfg.Layout.MaxQuantity),
	), nil
}

// newRunner creates a pipeline runner for cfg.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config) (*pipeline.Runner, error) {
	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ch, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(engine, ch, keyer, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	switch cfg.Driver {
	case config.CacheFile:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.URL)
	default:
		return cache.NewNullCache(), nil
	}
}

// localCache switches an unset cache to the file cache unless noCache is
// set. One-shot commands benefit from the disk cache; the server does not
// use it unless configured.
func localCache(cfg config.Cache, noCache bool) config.Cache {
	if noCache {
		cfg.Driver = config.CacheNone
		return cfg
	}
	if cfg.Driver == config.CacheNone {
		cfg.Driver = config.CacheFile
	}
	return cfg
}

// openStore opens the configured session store. For the CLI the memory
// store is replaced by the file store so sessions outlive the process.
func openStore(ctx context.Context, cfg config.Store) (session.Store, error) {
	if cfg.Driver == config.StoreMemory {
		cfg.Driver = config.StoreFile
	}
	return session.Open(ctx, cfg)
}

// =============================================================================
// Paths
// =============================================================================

// catalogCache returns the disk cache for remote catalogs, or nil if the
// cache directory is unusable.
func catalogCache() *httputil.Cache {
	dir, err := cacheDir()
	if err != nil {
		return nil
	}
	c, err := httputil.NewCache(filepath.Join(dir, "catalogs"), catalogTTL)
	if err != nil {
		return nil
	}
	return c
}

// cacheDir returns the cache directory using XDG standard (~/.cache/sitegrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

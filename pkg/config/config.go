// Package config loads sitegrid settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, environment
// variables, command-line flags (applied by the caller).
//
// Example file:
//
//	catalog = "devices.toml"
//
//	[server]
//	addr = ":3001"
//	allowed_origins = ["https://plans.example.com"]
//	shutdown_timeout = "10s"
//
//	[store]
//	driver = "sqlite"
//	path = "/var/lib/sitegrid/sessions.db"
//
//	[cache]
//	driver = "redis"
//	url = "redis://localhost:6379/0"
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegrid/pkg/errors"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Cache drivers.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// DefaultAddr matches the port the web client expects.
const DefaultAddr = ":3001"

// Config is the complete application configuration.
type Config struct {
	// Catalog is an optional path to a TOML device catalog. Empty selects
	// the built-in devices.
	Catalog string `toml:"catalog"`

	Server Server `toml:"server"`
	Layout Layout `toml:"layout"`
	Store  Store  `toml:"store"`
	Cache  Cache  `toml:"cache"`
	Log    Log    `toml:"log"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	Metrics         bool          `toml:"metrics"`
}

// Layout tunes the grid engine.
type Layout struct {
	Columns     int `toml:"columns"`
	MaxQuantity int `toml:"max_quantity"`
}

// Store selects the session backend.
type Store struct {
	Driver     string `toml:"driver"`
	Path       string `toml:"path"`       // file directory or sqlite file
	URI        string `toml:"uri"`        // postgres DSN or mongo URI
	Database   string `toml:"database"`   // mongo only
	Collection string `toml:"collection"` // mongo only
}

// Cache selects the layout cache backend.
type Cache struct {
	Driver string `toml:"driver"`
	Dir    string `toml:"dir"`
	URL    string `toml:"url"`
	Prefix string `toml:"prefix"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Default returns a configuration that serves an in-memory API on
// [DefaultAddr] without caching.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            DefaultAddr,
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			Metrics:         true,
		},
		Layout: Layout{Columns: 10, MaxQuantity: 1000},
		Store:  Store{Driver: StoreMemory},
		Cache:  Cache{Driver: CacheNone},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults and applies the process environment.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides fields from environment variables read through getenv:
//
//	PORT               server listen port
//	DATABASE_URL       postgres session store
//	MONGO_URI          mongo session store (wins over DATABASE_URL)
//	REDIS_URL          redis layout cache
//	SITEGRID_CATALOG   device catalog path
//	SITEGRID_LOG_LEVEL log level
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Store.Driver = StorePostgres
		c.Store.URI = v
	}
	if v := getenv("MONGO_URI"); v != "" {
		c.Store.Driver = StoreMongo
		c.Store.URI = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Cache.Driver = CacheRedis
		c.Cache.URL = v
	}
	if v := getenv("SITEGRID_CATALOG"); v != "" {
		c.Catalog = v
	}
	if v := getenv("SITEGRID_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first inconsistent setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreFile:
	case StoreSQLite:
		if c.Store.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.path is required for the sqlite driver")
		}
	case StorePostgres, StoreMongo:
		if c.Store.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.uri is required for the %s driver", c.Store.Driver)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store driver %q", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.url is required for the redis driver")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache driver %q", c.Cache.Driver)
	}

	if c.Layout.Columns <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.columns must be positive")
	}
	if c.Layout.MaxQuantity < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.max_quantity must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	return lvl, nil
}

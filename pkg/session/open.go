package session

import (
	"context"

	"github.com/matzehuels/sitegrid/pkg/config"
	sgerrors "github.com/matzehuels/sitegrid/pkg/errors"
)

// Open creates the backend named by cfg.Driver and wraps it with
// [Instrument]. An empty driver selects the memory store.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.StoreMemory
	}

	var (
		s   Store
		err error
	)
	switch driver {
	case config.StoreMemory:
		s = NewMemoryStore()
	case config.StoreFile:
		s, err = NewFileStore(cfg.Path)
	case config.StoreSQLite:
		s, err = NewSQLiteStore(ctx, cfg.Path)
	case config.StorePostgres:
		s, err = NewPostgresStore(ctx, cfg.URI)
	case config.StoreMongo:
		s, err = NewMongoStore(ctx, cfg.URI, cfg.Database, cfg.Collection)
	default:
		return nil, sgerrors.New(sgerrors.ErrCodeInvalidConfig, "unknown store driver %q", driver)
	}
	if err != nil {
		return nil, sgerrors.Wrap(sgerrors.ErrCodeStorage, err, "open %s store", driver)
	}
	return Instrument(s, driver), nil
}

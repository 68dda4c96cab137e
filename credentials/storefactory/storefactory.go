package storefactory

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/filestore"
	"github.com/jrsteele09/go-store-admin/credentials/memstore"
	"github.com/jrsteele09/go-store-admin/credentials/redisstore"
	"github.com/jrsteele09/go-store-admin/credentials/sqlstore"
	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/jrsteele09/go-store-admin/internal/errors"
	"gorm.io/gorm"
)

// Driver identifiers supported by the factory.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Dependencies captures external handles a driver may reuse instead of opening its own.
type Dependencies struct {
	SQLiteDB *gorm.DB
}

// Closer is implemented by stores holding connections
type Closer interface {
	Close() error
}

// New creates a credential store based on the configured driver.
func New(ctx context.Context, cfg config.Config, deps Dependencies) (credentials.Store, error) {
	driver := cfg.GetCredentialStoreDriver()
	if driver == "" {
		driver = DriverFile
	}

	switch driver {
	case DriverMemory:
		return memstore.New(), nil
	case DriverFile:
		return filestore.NewInFolder(cfg.GetDataFolder())
	case DriverRedis:
		return redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.GetRedisAddr(),
			Username: cfg.GetRedisUsername(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
			Prefix:   cfg.GetRedisPrefix(),
		})
	case DriverSQLite:
		if deps.SQLiteDB != nil {
			return sqlstore.New(deps.SQLiteDB)
		}
		dsn := cfg.GetSQLiteDSN()
		if dsn == "" {
			dsn = cfg.GetDataFolder() + "/credentials.db"
		}
		return sqlstore.Open(dsn)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedDriver, "[storefactory New] %q", driver)
	}
}

// Close releases the store's connections when it holds any
func Close(store credentials.Store) error {
	if c, ok := store.(Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("[storefactory Close] %w", err)
		}
	}
	return nil
}

package storage

import (
	"fmt"
	"strings"
)

// DefaultSQLitePath is used when no database location is configured.
const DefaultSQLitePath = "data/search.db"

// NewStore builds a Store from the configured driver and DSN. An empty
// driver is inferred from the DSN: postgres:// and postgresql:// URLs get
// a PostgresStore, anything else is treated as a SQLite file path.
func NewStore(driver, dsn string, dimensions int) (Store, error) {
	if driver == "" {
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			driver = "postgres"
		} else {
			driver = "sqlite3"
		}
	}

	switch driver {
	case "postgres":
		return NewPostgresStore(dsn, dimensions)
	case "sqlite3", "sqlite":
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		return NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

package main

import (
	"fmt"

	"audioid/internal/catalog"
	"audioid/internal/config"
	"audioid/internal/store/gormstore"
	"audioid/internal/store/pg"
)

// newStoreFromEnv opens the catalog.Store selected by CATALOG_DRIVER.
// "sqlite" (the default) needs no external service and is the natural
// choice for trying the CLI; "postgres" uses internal/store/pg against
// config.PostgresFromEnv's DSN.
func newStoreFromEnv() (catalog.Store, error) {
	switch config.GetEnv("CATALOG_DRIVER", "sqlite") {
	case "postgres":
		s, err := pg.Open(config.PostgresFromEnv().DSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil

	case "sqlite":
		path := config.GetEnv("CATALOG_SQLITE_PATH", "audioid.db")
		s, err := gormstore.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown CATALOG_DRIVER %q", config.GetEnv("CATALOG_DRIVER", "sqlite"))
	}
}

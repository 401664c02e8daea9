package database

import (
	"fmt"

	"findv/internal/catalog"
	"findv/internal/config"
)

// NewStoreFromConfig opens the catalog store selected by the catalog config.
func NewStoreFromConfig(cfg config.CatalogConfig, idgen catalog.IDGenerator, clock catalog.Clock) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite catalog")
		}
		return NewSQLiteDatabase(cfg.Path, idgen, clock)
	case "memory":
		return NewSQLiteDatabase(MemoryPath, idgen, clock)
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Type)
	}
}

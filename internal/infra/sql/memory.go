package sql

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMemoryORM opens a private in-memory SQLite database. Connections
// opened with the same name share it.
func NewMemoryORM(name string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite in-memory db: %w", err)
	}

	return &DB{DB: gormDB, system: "sqlite", autoMigrationEnabled: true}, nil
}

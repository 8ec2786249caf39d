// Package testing provides test utilities and database setup for flow and repository tests
package testing

import (
	"fmt"
	"sync/atomic"

	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB represents an in-memory test database instance.
// The pure-Go sqlite driver keeps tests independent of a running Postgres.
type TestDB struct {
	DB *gorm.DB
}

var testDBCounter atomic.Int64

// SetupTestDB opens a fresh in-memory database and migrates the schema.
// Each call gets its own named database so tests stay isolated.
func SetupTestDB() (*TestDB, error) {
	dsn := fmt.Sprintf("file:testdb-%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	// A single connection keeps every session on the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.CulturalObject{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate test schema: %w", err)
	}

	return &TestDB{DB: db}, nil
}

// TeardownTestDB closes the underlying connection; the in-memory database
// disappears with it
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB == nil {
		return nil
	}
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

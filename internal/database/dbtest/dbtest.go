// Package dbtest provides a throwaway database for tests.
package dbtest

import (
	"testing"

	"elca-web/internal/config"
	"elca-web/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Setup replaces database.DB with a migrated and seeded in-memory SQLite
// database for the duration of the test.
func Setup(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DriverSQLite, ":memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedReferenceData(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})
	return db
}

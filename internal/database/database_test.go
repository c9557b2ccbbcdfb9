package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: newGormLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestCustomGormLoggerLogMode(t *testing.T) {
	base := newGormLogger()
	derived := base.LogMode(logger.Info)

	// LogMode returns a copy; the base logger keeps its level.
	require.NotSame(t, base, derived)
}

func TestGetReadDBDefaultsToNil(t *testing.T) {
	require.Nil(t, GetReadDB())
}

// Package dbtest opens isolated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DelphiTri/website/internal/db"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

var counter atomic.Int64

// Open returns a migrated database private to the calling test. A named
// shared-cache memory database keeps every pooled connection on the same data.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, counter.Add(1))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return conn
}

// SeedUser inserts a user and fails the test on error.
func SeedUser(t *testing.T, conn *gorm.DB, user gormModels.User) gormModels.User {
	t.Helper()
	if user.Email == "" {
		user.Email = user.Username + "@example.com"
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user %q: %v", user.Username, err)
	}
	return user
}

// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/lshigami/formkit/config"
	"github.com/lshigami/formkit/database"
	"gorm.io/gorm"
)

// NewTestDB returns a migrated SQLite database living in a per-test directory.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.Database{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "forms.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return db
}

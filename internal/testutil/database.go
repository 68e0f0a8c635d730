// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"firedues/internal/database"
	"firedues/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// AllModels is the list of all GORM models to auto-migrate in tests.
var AllModels = []interface{}{
	&models.User{},
	&models.Person{},
	&models.Property{},
	&models.Ownership{},
	&models.FeeSchedule{},
	&models.Assessment{},
	&models.Payment{},
	&models.PaymentAllocation{},
	&models.UtilityNotice{},
	&models.JobRun{},
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}
}

// SetupTestDB creates an isolated in-memory SQLite database with all models
// migrated. The pool is limited to one connection so the named in-memory
// database lives exactly as long as the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", nextID())
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(AllModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// SetupFileTestDB creates a WAL-mode SQLite file in a temp dir, configured
// like production, for tests that need real concurrent connections.
func SetupFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dues.db")
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(path, 10*time.Second)), gormConfig())
	if err != nil {
		t.Fatalf("failed to open file test database: %v", err)
	}
	if err := db.AutoMigrate(AllModels...); err != nil {
		t.Fatalf("failed to migrate file test database: %v", err)
	}
	t.Cleanup(func() { TeardownTestDB(t, db) })
	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

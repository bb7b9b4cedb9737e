package testutil

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

// NewTestDB creates an in-memory SQLite database with all migrations
// applied. It automatically closes the database when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test db: %v", err)
	}
	// One connection, or each pooled conn would see its own :memory: database.
	sqlDB.SetMaxOpenConns(1)

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	return db
}

// NewTestUser inserts a user to own the test's planner data.
func NewTestUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	repo := repository.NewUserRepository(db)
	user, err := repo.UpsertFromTelegram(context.Background(), 100500, "Test", "User", "testuser")
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

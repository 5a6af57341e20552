package repository

import (
	"Lattice/internal/model"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&model.User{},
		&model.UserFollow{},
		&model.Post{},
		&model.Like{},
		&model.PostComment{},
		&model.Notification{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id uint64, disabled bool) {
	t.Helper()
	user := &model.User{
		ID:         id,
		Email:      fmt.Sprintf("u%d@example.com", id),
		Nickname:   fmt.Sprintf("u%d", id),
		Verified:   true,
		IsDisabled: disabled,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %d: %v", id, err)
	}
}

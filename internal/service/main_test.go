package service

import (
	"Lattice/internal/api/config"
	"Lattice/internal/model"
	"Lattice/internal/pkg/redis"
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
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

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	if err := redis.InitRedis(config.RedisConfig{Addr: mr.Addr()}); err != nil {
		t.Fatalf("init redis: %v", err)
	}
	return mr
}

func setupTestConfig(t *testing.T) {
	t.Helper()
	config.Cfg = &config.Config{}
}

func seedUser(t *testing.T, db *gorm.DB, id uint64, disabled bool) *model.User {
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
	return user
}

// stubPublisher 同步收集事件，代替经 Kafka 的异步投递
type stubPublisher struct {
	events []*model.NotificationEvent
}

func (s *stubPublisher) Publish(_ context.Context, event *model.NotificationEvent) error {
	s.events = append(s.events, event)
	return nil
}

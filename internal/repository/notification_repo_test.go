package repository

import (
	"Lattice/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNotification_Dedup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepo(db)
	ctx := context.Background()

	event := &model.Notification{
		RecipientID: 1,
		ActorID:     2,
		Kind:        model.NotificationKindLike,
		SubjectID:   10,
		CreatedAt:   time.Now(),
	}
	inserted, err := repo.CreateNotification(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	// 同一 (kind, actor, recipient, subject) 重复投递被折叠
	dup := &model.Notification{
		RecipientID: 1,
		ActorID:     2,
		Kind:        model.NotificationKindLike,
		SubjectID:   10,
		CreatedAt:   time.Now(),
	}
	inserted, err = repo.CreateNotification(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	// 不同 subject 是新通知
	other := &model.Notification{
		RecipientID: 1,
		ActorID:     2,
		Kind:        model.NotificationKindLike,
		SubjectID:   11,
		CreatedAt:   time.Now(),
	}
	inserted, err = repo.CreateNotification(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	count, err := repo.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMarkRead_Monotonic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepo(db)
	ctx := context.Background()

	n := &model.Notification{RecipientID: 1, ActorID: 2, Kind: model.NotificationKindFollow, CreatedAt: time.Now()}
	_, err := repo.CreateNotification(ctx, n)
	require.NoError(t, err)

	updated, err := repo.MarkRead(ctx, 1, n.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	// 重复置已读不再翻转任何行
	updated, err = repo.MarkRead(ctx, 1, n.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	// 非接收者无法置已读
	m := &model.Notification{RecipientID: 1, ActorID: 3, Kind: model.NotificationKindFollow, CreatedAt: time.Now()}
	_, err = repo.CreateNotification(ctx, m)
	require.NoError(t, err)

	updated, err = repo.MarkRead(ctx, 2, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepo(db)
	ctx := context.Background()

	for i := uint64(2); i <= 4; i++ {
		_, err := repo.CreateNotification(ctx, &model.Notification{
			RecipientID: 1, ActorID: i, Kind: model.NotificationKindFollow, CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	updated, err := repo.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	updated, err = repo.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	count, err := repo.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListByRecipient_CursorPaging(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepo(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		_, err := repo.CreateNotification(ctx, &model.Notification{
			RecipientID: 1,
			ActorID:     uint64(10 + i),
			Kind:        model.NotificationKindFollow,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	first, err := repo.ListByRecipient(ctx, 1, nil, 0, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	last := first[len(first)-1]
	ts := last.CreatedAt.UnixNano()
	second, err := repo.ListByRecipient(ctx, 1, &ts, last.ID, 3)
	require.NoError(t, err)
	require.Len(t, second, 2)

	// 两页无重叠
	seen := map[uint64]bool{}
	for _, n := range append(first, second...) {
		assert.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}

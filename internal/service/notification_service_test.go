package service

import (
	"Lattice/internal/model"
	"Lattice/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newNotificationFixture(t *testing.T) (NotificationService, *gorm.DB) {
	db := setupTestDB(t)
	setupTestRedis(t)
	svc := NewNotificationService(
		repository.NewNotificationRepo(db),
		repository.NewUserRepo(db),
		repository.NewPostRepository(db),
	)
	return svc, db
}

func TestIngest_Dedup(t *testing.T) {
	svc, _ := newNotificationFixture(t)
	ctx := context.Background()

	event := &model.NotificationEvent{
		Kind:        model.NotificationKindLike,
		ActorID:     2,
		RecipientID: 1,
		SubjectID:   10,
		CreatedAt:   time.Now(),
	}

	accepted, err := svc.Ingest(ctx, event)
	require.NoError(t, err)
	assert.True(t, accepted)

	// 消息重复投递折叠为空操作，未读计数不会再涨
	accepted, err = svc.Ingest(ctx, event)
	require.NoError(t, err)
	assert.False(t, accepted)

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIngest_SelfActionSuppressed(t *testing.T) {
	svc, _ := newNotificationFixture(t)
	ctx := context.Background()

	accepted, err := svc.Ingest(ctx, &model.NotificationEvent{
		Kind:        model.NotificationKindLike,
		ActorID:     1,
		RecipientID: 1,
		SubjectID:   10,
	})
	require.NoError(t, err)
	assert.False(t, accepted)

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkRead_OwnershipAndIdempotency(t *testing.T) {
	svc, _ := newNotificationFixture(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &model.NotificationEvent{
		Kind:        model.NotificationKindFollow,
		ActorID:     2,
		RecipientID: 1,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	page, err := svc.ListNotifications(ctx, 1, "", 10)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	id := page.List[0].ID

	// 别人的通知不能被置已读
	_, err = svc.MarkRead(ctx, 2, id)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.MarkRead(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	updated, err := svc.MarkRead(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = svc.MarkRead(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkAllRead_CountsFlippedRows(t *testing.T) {
	svc, _ := newNotificationFixture(t)
	ctx := context.Background()

	for actor := uint64(2); actor <= 4; actor++ {
		_, err := svc.Ingest(ctx, &model.NotificationEvent{
			Kind:        model.NotificationKindFollow,
			ActorID:     actor,
			RecipientID: 1,
			CreatedAt:   time.Now(),
		})
		require.NoError(t, err)
	}

	updated, err := svc.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	updated, err = svc.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListNotifications_Paging(t *testing.T) {
	svc, _ := newNotificationFixture(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		_, err := svc.Ingest(ctx, &model.NotificationEvent{
			Kind:        model.NotificationKindFollow,
			ActorID:     uint64(10 + i),
			RecipientID: 1,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	first, err := svc.ListNotifications(ctx, 1, "", 3)
	require.NoError(t, err)
	assert.Len(t, first.List, 3)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListNotifications(ctx, 1, first.NextCursor, 3)
	require.NoError(t, err)
	assert.Len(t, second.List, 2)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextCursor)

	_, err = svc.ListNotifications(ctx, 1, "not-base64!!", 3)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestListNotifications_FillsActorAndSubject(t *testing.T) {
	svc, db := newNotificationFixture(t)
	ctx := context.Background()

	seedUser(t, db, 1, false)
	seedUser(t, db, 2, false)
	postRepo := repository.NewPostRepository(db)
	require.NoError(t, postRepo.CreatePost(ctx, &model.Post{
		ID: 10, UserID: 1, Content: "morning coffee thoughts", CreatedAt: time.Now(),
	}))

	_, err := svc.Ingest(ctx, &model.NotificationEvent{
		Kind: model.NotificationKindLike, ActorID: 2, RecipientID: 1, SubjectID: 10, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, &model.NotificationEvent{
		Kind: model.NotificationKindFollow, ActorID: 2, RecipientID: 1, CreatedAt: time.Now().Add(time.Second),
	})
	require.NoError(t, err)

	page, err := svc.ListNotifications(ctx, 1, "", 10)
	require.NoError(t, err)
	require.Len(t, page.List, 2)

	follow := page.List[0]
	assert.Equal(t, model.NotificationKindFollow, follow.Kind)
	assert.Equal(t, "u2", follow.ActorNickname)
	assert.Empty(t, follow.SubjectPreview)

	like := page.List[1]
	assert.Equal(t, model.NotificationKindLike, like.Kind)
	assert.Equal(t, "u2", like.ActorNickname)
	assert.Equal(t, "morning coffee thoughts", like.SubjectPreview)
}

package service

import (
	"Lattice/internal/api/dto"
	"Lattice/internal/model"
	"Lattice/internal/pkg/consts"
	"Lattice/internal/pkg/redis"
	"Lattice/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type actionFixture struct {
	db        *gorm.DB
	actionSvc PostActionService
	publisher *stubPublisher
}

func newActionFixture(t *testing.T) *actionFixture {
	db := setupTestDB(t)
	setupTestRedis(t)

	publisher := &stubPublisher{}
	postRepo := repository.NewPostRepository(db)
	actionRepo := repository.NewPostActionRepo(db)

	seedUser(t, db, 1, false)
	seedUser(t, db, 2, false)
	require.NoError(t, postRepo.CreatePost(context.Background(), &model.Post{
		ID: 10, UserID: 2, Content: "hello", CreatedAt: time.Now(),
	}))

	return &actionFixture{
		db:        db,
		actionSvc: NewPostActionService(actionRepo, postRepo, publisher),
		publisher: publisher,
	}
}

func TestLikePost_IdempotentAndNotifies(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.actionSvc.LikePost(ctx, 1, 10))
	require.NoError(t, f.actionSvc.LikePost(ctx, 1, 10))

	count, err := f.actionSvc.GetPostLikeCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 重复点赞只投递一次通知
	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, model.NotificationKindLike, event.Kind)
	assert.Equal(t, uint64(1), event.ActorID)
	assert.Equal(t, uint64(2), event.RecipientID)
	assert.Equal(t, uint64(10), event.SubjectID)
}

func TestLikePost_SelfLikeNoNotification(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	// 作者给自己的帖子点赞，计数生效但不产生通知
	require.NoError(t, f.actionSvc.LikePost(ctx, 2, 10))

	count, err := f.actionSvc.GetPostLikeCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Empty(t, f.publisher.events)
}

func TestLikePost_MissingPost(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	err := f.actionSvc.LikePost(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCancelLikePost(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	// 未点赞时取消是空操作
	require.NoError(t, f.actionSvc.CancelLikePost(ctx, 1, 10))

	require.NoError(t, f.actionSvc.LikePost(ctx, 1, 10))
	require.NoError(t, f.actionSvc.CancelLikePost(ctx, 1, 10))

	count, err := f.actionSvc.GetPostLikeCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	liked, err := f.actionSvc.IsLiked(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeCounter_NeverNegative(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.actionSvc.LikePost(ctx, 1, 10))

	// 预热缓存后人为调低，触发取消点赞时的下溢钳制
	_, err := f.actionSvc.GetPostLikeCount(ctx, 10)
	require.NoError(t, err)
	key := consts.PostLikeKey + "10"
	require.NoError(t, redis.SetWithExpiration(ctx, key, 0, time.Hour))

	require.NoError(t, f.actionSvc.CancelLikePost(ctx, 1, 10))

	cached, err := redis.GetInt64(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cached)
}

func TestComment_Lifecycle(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.actionSvc.CreateComment(ctx, 1, &dto.CommentCreateDTO{PostID: 10, Content: "first"}))
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, model.NotificationKindComment, f.publisher.events[0].Kind)

	count, err := f.actionSvc.GetPostCommentCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	page, err := f.actionSvc.GetCommentsByPostID(ctx, 10, "", 10)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	commentID := page.List[0].ID

	// 只有作者能改/删
	err = f.actionSvc.UpdateComment(ctx, 2, commentID, "hacked")
	assert.ErrorIs(t, err, ErrNotOwner)
	err = f.actionSvc.DeleteComment(ctx, 2, commentID)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, f.actionSvc.UpdateComment(ctx, 1, commentID, "edited"))
	require.NoError(t, f.actionSvc.DeleteComment(ctx, 1, commentID))

	err = f.actionSvc.DeleteComment(ctx, 1, commentID)
	assert.ErrorIs(t, err, ErrPostCommentNotFound)
}

func TestCreateComment_OnOwnPostNoNotification(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.actionSvc.CreateComment(ctx, 2, &dto.CommentCreateDTO{PostID: 10, Content: "self"}))
	assert.Empty(t, f.publisher.events)
}

func TestLikePost_MarksCounterDirty(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.actionSvc.LikePost(ctx, 1, 10))
	members, err := redis.GetSet(ctx, consts.PostLikeDirtyKey)
	require.NoError(t, err)
	assert.Contains(t, members, "10")

	// 取消点赞同样留下待校正标记
	require.NoError(t, redis.DeleteKey(ctx, consts.PostLikeDirtyKey))
	require.NoError(t, f.actionSvc.CancelLikePost(ctx, 1, 10))
	members, err = redis.GetSet(ctx, consts.PostLikeDirtyKey)
	require.NoError(t, err)
	assert.Contains(t, members, "10")
}

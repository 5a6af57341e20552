package service

import (
	"Lattice/internal/model"
	"Lattice/internal/pkg/consts"
	"Lattice/internal/pkg/redis"
	"Lattice/internal/repository"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowFixture(t *testing.T) (UserFollowService, *stubPublisher, *miniredis.Miniredis) {
	db := setupTestDB(t)
	mr := setupTestRedis(t)
	publisher := &stubPublisher{}
	return NewUserFollowService(repository.NewUserFollowRepo(db), publisher), publisher, mr
}

func TestCreateUserFollow_SelfFollowRejected(t *testing.T) {
	svc, _, _ := newFollowFixture(t)
	ctx := context.Background()

	err := svc.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 1})
	assert.ErrorIs(t, err, ErrUserFollowSelf)
}

func TestCreateUserFollow_IdempotentAndNotifies(t *testing.T) {
	svc, publisher, _ := newFollowFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2}))
	require.NoError(t, svc.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2}))

	count, err := svc.GetUserFollowingCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.GetUserFollowerCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 幂等空操作不再触发通知
	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, model.NotificationKindFollow, event.Kind)
	assert.Equal(t, uint64(1), event.ActorID)
	assert.Equal(t, uint64(2), event.RecipientID)
}

func TestDeleteUserFollow(t *testing.T) {
	svc, publisher, _ := newFollowFixture(t)
	ctx := context.Background()

	// 边不存在时取关是空操作
	require.NoError(t, svc.DeleteUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2}))

	require.NoError(t, svc.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2}))
	require.NoError(t, svc.DeleteUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2}))

	following, err := svc.GetSomeoneIsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, following)

	count, err := svc.GetUserFollowerCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// 取关不回收已投递的关注通知
	assert.Len(t, publisher.events, 1)
}

func TestFollowCounter_CacheConsistency(t *testing.T) {
	svc, _, mr := newFollowFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2}))

	// 读穿填充缓存
	count, err := svc.GetUserFollowerCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, mr.Exists(consts.UserFollowerCountKey+"2"))

	// 缓存命中后增量更新保持同步
	require.NoError(t, svc.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 3, FollowingID: 2}))
	count, err = svc.GetUserFollowerCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.DeleteUserFollow(ctx, &model.UserFollow{FollowerID: 3, FollowingID: 2}))
	count, err = svc.GetUserFollowerCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFollow_MarksDirtySet(t *testing.T) {
	svc, _, _ := newFollowFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2}))

	members, err := redis.GetSet(ctx, consts.UserFollowDirtyKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, members)
}

func TestGetUserFollowers_CursorPaging(t *testing.T) {
	svc, _, _ := newFollowFixture(t)
	ctx := context.Background()

	for follower := uint64(2); follower <= 6; follower++ {
		require.NoError(t, svc.CreateUserFollow(ctx, &model.UserFollow{FollowerID: follower, FollowingID: 1}))
	}

	page1, err := svc.GetUserFollowers(ctx, 1, "", 3)
	require.NoError(t, err)
	require.Len(t, page1.List, 3)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := svc.GetUserFollowers(ctx, 1, page1.NextCursor, 3)
	require.NoError(t, err)
	require.Len(t, page2.List, 2)
	assert.False(t, page2.HasMore)
	assert.Empty(t, page2.NextCursor)

	// 两页无重叠
	seen := make(map[uint64]bool)
	for _, e := range append(page1.List, page2.List...) {
		assert.False(t, seen[e.UserID])
		seen[e.UserID] = true
	}

	_, err = svc.GetUserFollowers(ctx, 1, "not-base64!!", 3)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

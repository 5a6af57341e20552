package repository

import (
	"Lattice/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserFollow_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserFollowRepo(db)
	ctx := context.Background()

	follow := &model.UserFollow{FollowerID: 1, FollowingID: 2, CreatedAt: time.Now()}

	inserted, err := repo.CreateUserFollow(ctx, follow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	// 重复关注折叠为空操作
	inserted, err = repo.CreateUserFollow(ctx, follow)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	count, err := repo.GetUserFollowingCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUserFollow_MissingEdge(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserFollowRepo(db)
	ctx := context.Background()

	deleted, err := repo.DeleteUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	_, err = repo.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2, CreatedAt: time.Now()})
	require.NoError(t, err)

	deleted, err = repo.DeleteUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestGetFollowingIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserFollowRepo(db)
	ctx := context.Background()

	for _, fid := range []uint64{2, 3, 4} {
		_, err := repo.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: fid, CreatedAt: time.Now()})
		require.NoError(t, err)
	}

	ids, err := repo.GetFollowingIDs(ctx, 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{2, 3, 4}, ids)

	ids, err = repo.GetFollowingIDs(ctx, 99, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGetActiveFollowingIDs_OrderedByRecentPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserFollowRepo(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	for _, id := range []uint64{2, 3, 4} {
		seedUser(t, db, id, false)
		_, err := repo.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: id, CreatedAt: time.Now()})
		require.NoError(t, err)
	}

	base := time.Now().Add(-time.Hour)
	// u3 最近发帖，u2 次之，u4 没有发帖
	require.NoError(t, postRepo.CreatePost(ctx, &model.Post{ID: 1, UserID: 2, Content: "a", CreatedAt: base}))
	require.NoError(t, postRepo.CreatePost(ctx, &model.Post{ID: 2, UserID: 3, Content: "b", CreatedAt: base.Add(time.Minute)}))

	ids, err := repo.GetActiveFollowingIDs(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 2}, ids)
}

func TestGetUserFollowers_CursorStableUnderConcurrentInsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserFollowRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	// 粉丝 2 和 3 同一时刻关注，靠 follower_id 破平
	times := map[uint64]time.Time{
		2: base,
		3: base,
		4: base.Add(1 * time.Minute),
		5: base.Add(2 * time.Minute),
		6: base.Add(3 * time.Minute),
	}
	for follower, at := range times {
		_, err := repo.CreateUserFollow(ctx, &model.UserFollow{FollowerID: follower, FollowingID: 1, CreatedAt: at})
		require.NoError(t, err)
	}

	page1, err := repo.GetUserFollowers(ctx, 1, nil, 0, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	assert.Equal(t, uint64(6), page1[0].FollowerID)
	assert.Equal(t, uint64(5), page1[1].FollowerID)
	assert.Equal(t, uint64(4), page1[2].FollowerID)

	// 翻页间隙新增的关注落在第一页之前，不会挤进后续页
	_, err = repo.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 7, FollowingID: 1, CreatedAt: base.Add(10 * time.Minute)})
	require.NoError(t, err)

	last := page1[len(page1)-1]
	ts := last.CreatedAt.UnixNano()
	page2, err := repo.GetUserFollowers(ctx, 1, &ts, last.FollowerID, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, uint64(3), page2[0].FollowerID)
	assert.Equal(t, uint64(2), page2[1].FollowerID)
}

func TestGetUserFollowing_CursorPaging(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserFollowRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := uint64(2); i <= 5; i++ {
		_, err := repo.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 1, FollowingID: i, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	page1, err := repo.GetUserFollowing(ctx, 1, nil, 0, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, uint64(5), page1[0].FollowingID)
	assert.Equal(t, uint64(4), page1[1].FollowingID)

	ts := page1[1].CreatedAt.UnixNano()
	page2, err := repo.GetUserFollowing(ctx, 1, &ts, page1[1].FollowingID, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, uint64(3), page2[0].FollowingID)
	assert.Equal(t, uint64(2), page2[1].FollowingID)
}

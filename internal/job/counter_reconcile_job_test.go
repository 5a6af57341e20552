package job

import (
	"Lattice/internal/api/config"
	"Lattice/internal/model"
	"Lattice/internal/pkg/consts"
	"Lattice/internal/pkg/redis"
	"Lattice/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupJobFixture(t *testing.T) (*gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.UserFollow{}, &model.Like{}))

	mr := miniredis.RunT(t)
	require.NoError(t, redis.InitRedis(config.RedisConfig{Addr: mr.Addr()}))
	return db, mr
}

func TestCounterReconcileJob_RewritesDriftedCounters(t *testing.T) {
	db, mr := setupJobFixture(t)
	ctx := context.Background()

	followRepo := repository.NewUserFollowRepo(db)
	actionRepo := repository.NewPostActionRepo(db)

	// 数据库权威状态：用户 2 有两个粉丝，帖子 10 有一个赞
	for _, follower := range []uint64{1, 3} {
		_, err := followRepo.CreateUserFollow(ctx, &model.UserFollow{FollowerID: follower, FollowingID: 2, CreatedAt: time.Now()})
		require.NoError(t, err)
	}
	_, err := actionRepo.CreateLike(ctx, &model.Like{UserID: 1, PostID: 10, CreatedAt: time.Now()})
	require.NoError(t, err)

	// 缓存里是漂移值，对应键已进脏集合
	require.NoError(t, mr.Set(consts.UserFollowerCountKey+"2", "9"))
	require.NoError(t, mr.Set(consts.PostLikeKey+"10", "7"))
	require.NoError(t, redis.SAdd(ctx, consts.UserFollowDirtyKey, "2"))
	require.NoError(t, redis.SAdd(ctx, consts.PostLikeDirtyKey, "10"))

	job := NewCounterReconcileJob(followRepo, actionRepo)
	job.Run()

	follower, err := redis.GetInt64(ctx, consts.UserFollowerCountKey+"2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), follower)

	like, err := redis.GetInt64(ctx, consts.PostLikeKey+"10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), like)

	// 脏集合处理完即清空
	assert.False(t, mr.Exists(consts.UserFollowDirtyKey))
	assert.False(t, mr.Exists(consts.UserFollowDirtyKey + ":processing"))
}

func TestCounterReconcileJob_NoDirtyKeysIsNoop(t *testing.T) {
	db, _ := setupJobFixture(t)

	job := NewCounterReconcileJob(
		repository.NewUserFollowRepo(db),
		repository.NewPostActionRepo(db),
	)
	// 没有脏数据时运行不报错也不写任何键
	job.Run()
}

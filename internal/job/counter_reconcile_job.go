package job

import (
	"Lattice/internal/pkg/consts"
	"Lattice/internal/pkg/logger"
	"Lattice/internal/pkg/redis"
	"Lattice/internal/pkg/util"
	"Lattice/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const counterExpiration = 7 * 24 * time.Hour

// CounterReconcileJob 用数据库权威值回写脏集合里被计数器触碰过的键，
// 修正增量更新期间可能累积的漂移
type CounterReconcileJob struct {
	userFollowRepo repository.UserFollowRepo
	actionRepo     repository.PostActionRepo
}

func NewCounterReconcileJob(
	userFollowRepo repository.UserFollowRepo,
	actionRepo repository.PostActionRepo,
) *CounterReconcileJob {
	return &CounterReconcileJob{
		userFollowRepo: userFollowRepo,
		actionRepo:     actionRepo,
	}
}

func (s *CounterReconcileJob) Run() {
	traceID := "job-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	s.reconcileFollowCounters(ctx)
	s.reconcileLikeCounters(ctx)
}

func (s *CounterReconcileJob) reconcileFollowCounters(ctx context.Context) {
	userIDs, ok := s.drainDirtySet(ctx, consts.UserFollowDirtyKey)
	if !ok {
		return
	}

	for _, userID := range userIDs {
		followerCount, err := s.userFollowRepo.GetUserFollowerCount(ctx, userID)
		if err != nil {
			log.ErrorContext(ctx, "count followers error", "user_id", userID, "err", err)
			continue
		}
		followingCount, err := s.userFollowRepo.GetUserFollowingCount(ctx, userID)
		if err != nil {
			log.ErrorContext(ctx, "count followings error", "user_id", userID, "err", err)
			continue
		}

		idStr := strconv.FormatUint(userID, 10)
		if err = redis.SetWithExpiration(ctx, consts.UserFollowerCountKey+idStr, followerCount, counterExpiration); err != nil {
			log.ErrorContext(ctx, "write follower counter error", "user_id", userID, "err", err)
		}
		if err = redis.SetWithExpiration(ctx, consts.UserFollowingCountKey+idStr, followingCount, counterExpiration); err != nil {
			log.ErrorContext(ctx, "write following counter error", "user_id", userID, "err", err)
		}
	}

	log.InfoContext(ctx, "follow counters reconciled", "users", len(userIDs))
}

func (s *CounterReconcileJob) reconcileLikeCounters(ctx context.Context) {
	postIDs, ok := s.drainDirtySet(ctx, consts.PostLikeDirtyKey)
	if !ok {
		return
	}

	for _, postID := range postIDs {
		likeCount, err := s.actionRepo.GetLikeCountByPostID(ctx, postID)
		if err != nil {
			log.ErrorContext(ctx, "count likes error", "post_id", postID, "err", err)
			continue
		}
		idStr := strconv.FormatUint(postID, 10)
		if err = redis.SetWithExpiration(ctx, consts.PostLikeKey+idStr, likeCount, counterExpiration); err != nil {
			log.ErrorContext(ctx, "write like counter error", "post_id", postID, "err", err)
		}
	}

	log.InfoContext(ctx, "like counters reconciled", "posts", len(postIDs))
}

// drainDirtySet 把脏集合改名后整体读出，避免与在线写入竞争
func (s *CounterReconcileJob) drainDirtySet(ctx context.Context, dirtyKey string) ([]uint64, bool) {
	processingKey := dirtyKey + ":processing"
	if err := redis.Rename(ctx, dirtyKey, processingKey); err != nil {
		// 集合不存在说明这一轮没有脏数据
		return nil, false
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get dirty set error", "key", dirtyKey, "err", err)
		return nil, false
	}

	ids, err := util.StrSliceToUInt64Slice(members)
	if err != nil {
		log.ErrorContext(ctx, "convert dirty set error", "key", dirtyKey, "err", err)
		return nil, false
	}

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete processing set error", "key", dirtyKey, "err", err)
	}
	return ids, true
}

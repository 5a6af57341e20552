package service

import (
	"Lattice/internal/api/dto"
	"Lattice/internal/model"
	"Lattice/internal/pkg/consts"
	"Lattice/internal/pkg/redis"
	"Lattice/internal/pkg/util"
	"Lattice/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

const MaxFollowingCount = 1000

type UserFollowService interface {
	GetUserFollowers(ctx context.Context, userId uint64, cursor string, limit int) (*dto.FollowPageDTO, error)
	GetUserFollowing(ctx context.Context, userId uint64, cursor string, limit int) (*dto.FollowPageDTO, error)
	GetUserFollowerCount(ctx context.Context, userId uint64) (int64, error)
	GetUserFollowingCount(ctx context.Context, userId uint64) (int64, error)
	GetSomeoneIsFollowing(ctx context.Context, userId, followingId uint64) (bool, error)
	CreateUserFollow(ctx context.Context, userFollow *model.UserFollow) error
	DeleteUserFollow(ctx context.Context, userFollow *model.UserFollow) error
}

type UserFollowServiceImpl struct {
	userFollowRepo repository.UserFollowRepo
	publisher      EventPublisher
}

func NewUserFollowService(userFollowRepo repository.UserFollowRepo, publisher EventPublisher) UserFollowService {
	return &UserFollowServiceImpl{userFollowRepo: userFollowRepo, publisher: publisher}
}

type fetchCountFunc func(ctx context.Context, userId uint64) (int64, error)

// GetUserFollowers 游标分页获取粉丝列表，条目取边的对端
func (s *UserFollowServiceImpl) GetUserFollowers(ctx context.Context, userId uint64, cursor string, limit int) (*dto.FollowPageDTO, error) {
	cursorTs, cursorID, err := decodeFollowCursor(cursor)
	if err != nil {
		return nil, err
	}
	edges, err := s.userFollowRepo.GetUserFollowers(ctx, userId, cursorTs, cursorID, limit+1)
	if err != nil {
		return nil, err
	}
	return buildFollowPage(edges, limit, func(e *model.UserFollow) uint64 { return e.FollowerID }), nil
}

// GetUserFollowing 游标分页获取关注列表
func (s *UserFollowServiceImpl) GetUserFollowing(ctx context.Context, userId uint64, cursor string, limit int) (*dto.FollowPageDTO, error) {
	cursorTs, cursorID, err := decodeFollowCursor(cursor)
	if err != nil {
		return nil, err
	}
	edges, err := s.userFollowRepo.GetUserFollowing(ctx, userId, cursorTs, cursorID, limit+1)
	if err != nil {
		return nil, err
	}
	return buildFollowPage(edges, limit, func(e *model.UserFollow) uint64 { return e.FollowingID }), nil
}

func decodeFollowCursor(cursor string) (*int64, uint64, error) {
	c, err := util.DecodeCursor(cursor)
	if err != nil {
		return nil, 0, ErrParamInvalid
	}
	if c == nil {
		return nil, 0, nil
	}
	return &c.Ts, c.ID, nil
}

// buildFollowPage 关注边没有自己的代理主键，游标里的 id 是边的对端用户
func buildFollowPage(edges []*model.UserFollow, limit int, peer func(*model.UserFollow) uint64) *dto.FollowPageDTO {
	hasMore := len(edges) > limit
	if hasMore {
		edges = edges[:limit]
	}

	list := make([]*dto.FollowEdgeDTO, 0, len(edges))
	for _, e := range edges {
		list = append(list, &dto.FollowEdgeDTO{
			UserID:    peer(e),
			CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	page := &dto.FollowPageDTO{List: list, HasMore: hasMore}
	if hasMore && len(edges) > 0 {
		last := edges[len(edges)-1]
		page.NextCursor = util.EncodeCursor(last.CreatedAt, peer(last))
	}
	return page
}

func (s *UserFollowServiceImpl) GetUserFollowerCount(ctx context.Context, userId uint64) (int64, error) {
	return s.getCountCommon(
		ctx, userId,
		consts.UserFollowerCountKey,
		s.userFollowRepo.GetUserFollowerCount,
	)
}

func (s *UserFollowServiceImpl) GetUserFollowingCount(ctx context.Context, userId uint64) (int64, error) {
	return s.getCountCommon(
		ctx, userId,
		consts.UserFollowingCountKey,
		s.userFollowRepo.GetUserFollowingCount,
	)
}

// GetSomeoneIsFollowing 判断关注关系，授权判断永远查库，不看缓存
func (s *UserFollowServiceImpl) GetSomeoneIsFollowing(ctx context.Context, userId, followingId uint64) (bool, error) {
	userFollow, err := s.userFollowRepo.GetUserFollow(ctx, userId, followingId)
	if err != nil {
		return false, err
	}
	return userFollow != nil, nil
}

// CreateUserFollow 关注；重复关注为幂等空操作，计数与通知只在边实际创建时触发
func (s *UserFollowServiceImpl) CreateUserFollow(ctx context.Context, userFollow *model.UserFollow) error {
	if userFollow.FollowerID == userFollow.FollowingID {
		return ErrUserFollowSelf
	}

	count, err := s.userFollowRepo.GetUserFollowingCount(ctx, userFollow.FollowerID)
	if err != nil {
		return err
	}
	if count >= MaxFollowingCount {
		return ErrUserFollowLimit
	}

	userFollow.CreatedAt = time.Now()

	inserted, err := s.userFollowRepo.CreateUserFollow(ctx, userFollow)
	if err != nil {
		return err
	}
	if inserted == 0 {
		return nil
	}

	s.bumpCounts(ctx, userFollow, 1)
	s.markDirty(ctx, userFollow)

	return s.publisher.Publish(ctx, &model.NotificationEvent{
		Kind:        model.NotificationKindFollow,
		ActorID:     userFollow.FollowerID,
		RecipientID: userFollow.FollowingID,
		CreatedAt:   userFollow.CreatedAt,
	})
}

// DeleteUserFollow 取消关注；边不存在时为空操作，不是错误
// 已投递的关注通知不回收，通知是动作日志而非图状态镜像
func (s *UserFollowServiceImpl) DeleteUserFollow(ctx context.Context, userFollow *model.UserFollow) error {
	deleted, err := s.userFollowRepo.DeleteUserFollow(ctx, userFollow)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return nil
	}
	s.bumpCounts(ctx, userFollow, -1)
	s.markDirty(ctx, userFollow)
	return nil
}

func (s *UserFollowServiceImpl) bumpCounts(ctx context.Context, userFollow *model.UserFollow, delta int64) {
	followerKey := consts.UserFollowerCountKey + strconv.FormatUint(userFollow.FollowingID, 10)
	followingKey := consts.UserFollowingCountKey + strconv.FormatUint(userFollow.FollowerID, 10)

	if delta > 0 {
		_, _ = redis.IncrIfExists(ctx, followerKey, delta)
		_, _ = redis.IncrIfExists(ctx, followingKey, delta)
		return
	}
	for _, key := range []string{followerKey, followingKey} {
		underflow, err := redis.DecrClamp(ctx, key, -delta)
		if err != nil {
			continue
		}
		if underflow {
			log.WarnContext(ctx, "follow counter underflow clamped", "key", key)
		}
	}
}

func (s *UserFollowServiceImpl) markDirty(ctx context.Context, userFollow *model.UserFollow) {
	_ = redis.SAdd(ctx, consts.UserFollowDirtyKey,
		strconv.FormatUint(userFollow.FollowerID, 10),
		strconv.FormatUint(userFollow.FollowingID, 10),
	)
}

func (s *UserFollowServiceImpl) getCountCommon(
	ctx context.Context,
	userId uint64,
	keyPrefix string,
	fetchDB fetchCountFunc,
) (int64, error) {
	key := keyPrefix + strconv.FormatUint(userId, 10)

	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}

	count, err = fetchDB(ctx, userId)
	if err != nil {
		return 0, err
	}

	_ = redis.SetWithExpiration(ctx, key, count, time.Hour*1)
	return count, nil
}

package service

import (
	"Lattice/internal/api/dto"
	"Lattice/internal/model"
	"Lattice/internal/pkg/util"
	"Lattice/internal/repository"
	"context"

	"github.com/jinzhu/copier"
)

// MaxFeedFanout 时间线合并愿意承受的最大关注扇出
// 超过上限时退化为最近活跃的子集，而不是扫描无界的关注图
const MaxFeedFanout = 1000

const (
	FeedScopeAll       = "all"
	FeedScopeFollowing = "following"
)

type FeedService interface {
	ComposeFeed(ctx context.Context, viewerID uint64, scope string, cursor string, limit int, includeSelf bool) (*dto.FeedPageDTO, error)
}

type FeedServiceImpl struct {
	postRepo       repository.PostRepo
	userFollowRepo repository.UserFollowRepo
	actionSvc      PostActionService
}

func NewFeedService(
	postRepo repository.PostRepo,
	userFollowRepo repository.UserFollowRepo,
	actionSvc PostActionService,
) FeedService {
	return &FeedServiceImpl{
		postRepo:       postRepo,
		userFollowRepo: userFollowRepo,
		actionSvc:      actionSvc,
	}
}

// ComposeFeed 读时合并（fan-in）的时间线组合
// 排序 (created_at DESC, id DESC) 构成全序，游标可复现；
// 墓碑帖与停用作者在读取时过滤，不回写重排
func (s *FeedServiceImpl) ComposeFeed(ctx context.Context, viewerID uint64, scope string, cursor string, limit int, includeSelf bool) (*dto.FeedPageDTO, error) {
	c, err := util.DecodeCursor(cursor)
	if err != nil {
		return nil, ErrParamInvalid
	}

	var cursorTs *int64
	var cursorID uint64
	if c != nil {
		cursorTs = &c.Ts
		cursorID = c.ID
	}

	var posts []*model.Post
	switch scope {
	case FeedScopeFollowing:
		authorIDs, err := s.resolveAuthors(ctx, viewerID, includeSelf)
		if err != nil {
			return nil, err
		}
		posts, err = s.postRepo.ListByAuthors(ctx, authorIDs, cursorTs, cursorID, limit+1)
		if err != nil {
			return nil, err
		}
	case FeedScopeAll:
		posts, err = s.postRepo.ListAll(ctx, cursorTs, cursorID, limit+1)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrParamInvalid
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	list := make([]*dto.PostSummaryDTO, 0, len(posts))
	for _, post := range posts {
		item := &dto.PostSummaryDTO{}
		_ = copier.Copy(item, post)
		item.LikeCount, _ = s.actionSvc.GetPostLikeCount(ctx, post.ID)
		item.CommentCount, _ = s.actionSvc.GetPostCommentCount(ctx, post.ID)
		item.IsLiked, _ = s.actionSvc.IsLiked(ctx, viewerID, post.ID)
		item.CreatedAt = post.CreatedAt.Format("2006-01-02 15:04:05")
		list = append(list, item)
	}

	page := &dto.FeedPageDTO{List: list, HasMore: hasMore}
	if hasMore && len(posts) > 0 {
		last := posts[len(posts)-1]
		page.NextCursor = util.EncodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

// resolveAuthors 解析合并范围；"关注"按定义不含自己，是否并入自己的帖子由调用方决定
func (s *FeedServiceImpl) resolveAuthors(ctx context.Context, viewerID uint64, includeSelf bool) ([]uint64, error) {
	count, err := s.userFollowRepo.GetUserFollowingCount(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	var authorIDs []uint64
	if count > MaxFeedFanout {
		authorIDs, err = s.userFollowRepo.GetActiveFollowingIDs(ctx, viewerID, MaxFeedFanout)
	} else {
		authorIDs, err = s.userFollowRepo.GetFollowingIDs(ctx, viewerID, MaxFeedFanout)
	}
	if err != nil {
		return nil, err
	}

	if includeSelf {
		authorIDs = append(authorIDs, viewerID)
	}
	return authorIDs, nil
}

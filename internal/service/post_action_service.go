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

	"github.com/jinzhu/copier"
)

const cacheExpiration = 7 * 24 * time.Hour

type PostActionService interface {
	LikePost(ctx context.Context, userID, postID uint64) error
	CancelLikePost(ctx context.Context, userID, postID uint64) error
	GetPostLikeCount(ctx context.Context, postID uint64) (int64, error)
	IsLiked(ctx context.Context, userID, postID uint64) (bool, error)

	CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) error
	UpdateComment(ctx context.Context, userID, commentID uint64, content string) error
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	GetPostCommentCount(ctx context.Context, postID uint64) (int64, error)
	GetCommentsByPostID(ctx context.Context, postID uint64, cursor string, limit int) (*dto.CommentPageDTO, error)
}

type postActionServiceImpl struct {
	actionRepo repository.PostActionRepo
	postRepo   repository.PostRepo
	publisher  EventPublisher
}

func NewPostActionService(
	actionRepo repository.PostActionRepo,
	postRepo repository.PostRepo,
	publisher EventPublisher,
) PostActionService {
	return &postActionServiceImpl{
		actionRepo: actionRepo,
		postRepo:   postRepo,
		publisher:  publisher,
	}
}

// LikePost 点赞；并发重复点赞在存储层按主键冲突折叠，恰好一行生效
// 计数与通知只在实际插入时触发
func (s *postActionServiceImpl) LikePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	inserted, err := s.actionRepo.CreateLike(ctx, &model.Like{UserID: userID, PostID: postID, CreatedAt: time.Now()})
	if err != nil {
		return err
	}
	if inserted == 0 {
		return nil
	}

	key := consts.PostLikeKey + strconv.FormatUint(postID, 10)
	_, _ = redis.IncrIfExists(ctx, key, 1)
	s.markDirty(ctx, postID)

	// 给自己的帖子点赞不产生通知
	if post.UserID == userID {
		return nil
	}
	return s.publisher.Publish(ctx, &model.NotificationEvent{
		Kind:        model.NotificationKindLike,
		ActorID:     userID,
		RecipientID: post.UserID,
		SubjectID:   postID,
		CreatedAt:   time.Now(),
	})
}

// CancelLikePost 取消点赞；记录不存在时为空操作，已投递的通知不回收
func (s *postActionServiceImpl) CancelLikePost(ctx context.Context, userID, postID uint64) error {
	deleted, err := s.actionRepo.DeleteLike(ctx, userID, postID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return nil
	}

	key := consts.PostLikeKey + strconv.FormatUint(postID, 10)
	underflow, err := redis.DecrClamp(ctx, key, 1)
	if err == nil && underflow {
		log.WarnContext(ctx, "like counter underflow clamped", "post", postID)
	}
	s.markDirty(ctx, postID)
	return nil
}

// markDirty 把被增量触碰过的点赞计数标记为待校正，对账任务会用库内基数回写
func (s *postActionServiceImpl) markDirty(ctx context.Context, postID uint64) {
	_ = redis.SAdd(ctx, consts.PostLikeDirtyKey, strconv.FormatUint(postID, 10))
}

// GetPostLikeCount 点赞计数，读穿缓存，从点赞表基数重算
func (s *postActionServiceImpl) GetPostLikeCount(ctx context.Context, postID uint64) (int64, error) {
	key := consts.PostLikeKey + strconv.FormatUint(postID, 10)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	realCount, err := s.actionRepo.GetLikeCountByPostID(ctx, postID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, cacheExpiration)
	return realCount, nil
}

func (s *postActionServiceImpl) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.actionRepo.CheckLikeExists(ctx, userID, postID)
}

func (s *postActionServiceImpl) CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) error {
	post, err := s.postRepo.GetPost(ctx, req.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	comment := &model.PostComment{
		PostID:    req.PostID,
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err = s.actionRepo.CreateComment(ctx, comment); err != nil {
		return err
	}

	key := consts.PostCommentKey + strconv.FormatUint(req.PostID, 10)
	_, _ = redis.IncrIfExists(ctx, key, 1)

	if post.UserID == userID {
		return nil
	}
	return s.publisher.Publish(ctx, &model.NotificationEvent{
		Kind:        model.NotificationKindComment,
		ActorID:     userID,
		RecipientID: post.UserID,
		SubjectID:   comment.ID,
		CreatedAt:   comment.CreatedAt,
	})
}

func (s *postActionServiceImpl) UpdateComment(ctx context.Context, userID, commentID uint64, content string) error {
	comment, err := s.actionRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrPostCommentNotFound
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}
	return s.actionRepo.UpdateCommentContent(ctx, commentID, content)
}

func (s *postActionServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.actionRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrPostCommentNotFound
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}
	if err = s.actionRepo.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	key := consts.PostCommentKey + strconv.FormatUint(comment.PostID, 10)
	underflow, err := redis.DecrClamp(ctx, key, 1)
	if err == nil && underflow {
		log.WarnContext(ctx, "comment counter underflow clamped", "post", comment.PostID)
	}
	return nil
}

// GetPostCommentCount 评论计数，读穿缓存
func (s *postActionServiceImpl) GetPostCommentCount(ctx context.Context, postID uint64) (int64, error) {
	key := consts.PostCommentKey + strconv.FormatUint(postID, 10)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	realCount, err := s.actionRepo.GetCommentCountByPostID(ctx, postID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, cacheExpiration)
	return realCount, nil
}

// GetCommentsByPostID 游标分页获取评论
func (s *postActionServiceImpl) GetCommentsByPostID(ctx context.Context, postID uint64, cursor string, limit int) (*dto.CommentPageDTO, error) {
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

	comments, err := s.actionRepo.GetCommentsByPostID(ctx, postID, cursorTs, cursorID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(comments) > limit
	if hasMore {
		comments = comments[:limit]
	}

	list := make([]*dto.CommentDTO, 0, len(comments))
	for _, comment := range comments {
		item := &dto.CommentDTO{}
		_ = copier.Copy(item, comment)
		item.CreatedAt = comment.CreatedAt.Format("2006-01-02 15:04:05")
		list = append(list, item)
	}

	page := &dto.CommentPageDTO{List: list, HasMore: hasMore}
	if hasMore && len(comments) > 0 {
		last := comments[len(comments)-1]
		page.NextCursor = util.EncodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

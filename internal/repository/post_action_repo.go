package repository

import (
	"Lattice/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostActionRepo interface {
	CreateLike(ctx context.Context, like *model.Like) (int64, error)
	DeleteLike(ctx context.Context, userID, postID uint64) (int64, error)
	CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error)
	GetLikeCountByPostID(ctx context.Context, postID uint64) (int64, error)

	CreateComment(ctx context.Context, comment *model.PostComment) error
	UpdateCommentContent(ctx context.Context, commentID uint64, content string) error
	DeleteComment(ctx context.Context, commentID uint64) error
	GetCommentByID(ctx context.Context, commentID uint64) (*model.PostComment, error)
	GetCommentsByPostID(ctx context.Context, postID uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.PostComment, error)
	GetCommentCountByPostID(ctx context.Context, postID uint64) (int64, error)
}

type PostActionRepoImpl struct {
	db *gorm.DB
}

func NewPostActionRepo(db *gorm.DB) PostActionRepo {
	return &PostActionRepoImpl{db}
}

// CreateLike 点赞，重复点赞为幂等空操作，返回实际插入的行数
func (s *PostActionRepoImpl) CreateLike(ctx context.Context, like *model.Like) (int64, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			DoNothing: true,
		}).
		Create(like)
	return result.RowsAffected, result.Error
}

// DeleteLike 取消点赞，记录不存在时为空操作，返回实际删除的行数
func (s *PostActionRepoImpl) DeleteLike(ctx context.Context, userID, postID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{})
	return result.RowsAffected, result.Error
}

func (s *PostActionRepoImpl) CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *PostActionRepoImpl) GetLikeCountByPostID(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (s *PostActionRepoImpl) CreateComment(ctx context.Context, comment *model.PostComment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *PostActionRepoImpl) UpdateCommentContent(ctx context.Context, commentID uint64, content string) error {
	return s.db.WithContext(ctx).Model(&model.PostComment{}).
		Where("id = ?", commentID).
		Update("content", content).Error
}

// DeleteComment 软删除评论，保留 id 供通知继续引用
func (s *PostActionRepoImpl) DeleteComment(ctx context.Context, commentID uint64) error {
	return s.db.WithContext(ctx).Model(&model.PostComment{}).
		Where("id = ? AND is_deleted = ?", commentID, false).
		Update("is_deleted", true).Error
}

func (s *PostActionRepoImpl) GetCommentByID(ctx context.Context, commentID uint64) (*model.PostComment, error) {
	var comment model.PostComment
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", commentID, false).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID 游标分页获取帖子的评论
func (s *PostActionRepoImpl) GetCommentsByPostID(ctx context.Context, postID uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.PostComment, error) {
	query := s.db.WithContext(ctx).
		Where("post_id = ? AND is_deleted = ?", postID, false)
	if cursorTs != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			nanoTime(*cursorTs), nanoTime(*cursorTs), cursorID,
		)
	}
	var comments []*model.PostComment
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (s *PostActionRepoImpl) GetCommentCountByPostID(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.PostComment{}).
		Where("post_id = ? AND is_deleted = ?", postID, false).
		Count(&count).Error
	return count, err
}

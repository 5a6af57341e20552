package repository

import (
	"Lattice/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

func nanoTime(ns int64) time.Time {
	return time.Unix(0, ns)
}

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error)
	UpdatePostContent(ctx context.Context, id uint64, content string) error
	DeletePost(ctx context.Context, id uint64) error
	ListByAuthors(ctx context.Context, authorIDs []uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.Post, error)
	ListAll(ctx context.Context, cursorTs *int64, cursorID uint64, limit int) ([]*model.Post, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

// GetPost 获取帖子，墓碑帖视为不存在
func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostRepoImpl) GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostRepoImpl) UpdatePostContent(ctx context.Context, id uint64, content string) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("content", content).Error
}

// DeletePost 软删除，保留 id 供点赞评论通知继续引用
func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// ListByAuthors 按 (created_at, id) 降序合并多个作者的帖子流
// 游标谓词保证并发插入下翻页稳定；墓碑帖与停用作者的帖子在读取时过滤
func (s *PostRepoImpl) ListByAuthors(ctx context.Context, authorIDs []uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.Post, error) {
	if len(authorIDs) == 0 {
		return []*model.Post{}, nil
	}
	query := s.listQuery(ctx).Where("posts.user_id IN ?", authorIDs)
	return s.listPage(query, cursorTs, cursorID, limit)
}

// ListAll 全站帖子流，排序与游标语义同 ListByAuthors
func (s *PostRepoImpl) ListAll(ctx context.Context, cursorTs *int64, cursorID uint64, limit int) ([]*model.Post, error) {
	return s.listPage(s.listQuery(ctx), cursorTs, cursorID, limit)
}

func (s *PostRepoImpl) listQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Joins("JOIN users ON users.id = posts.user_id AND users.is_disabled = ?", false).
		Where("posts.is_deleted = ?", false)
}

func (s *PostRepoImpl) listPage(query *gorm.DB, cursorTs *int64, cursorID uint64, limit int) ([]*model.Post, error) {
	if cursorTs != nil {
		query = query.Where(
			"posts.created_at < ? OR (posts.created_at = ? AND posts.id < ?)",
			nanoTime(*cursorTs), nanoTime(*cursorTs), cursorID,
		)
	}
	var posts []*model.Post
	err := query.
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

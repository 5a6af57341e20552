package repository

import (
	"Lattice/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserFollowRepo interface {
	GetUserFollowers(ctx context.Context, userID uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.UserFollow, error)
	GetUserFollowing(ctx context.Context, userID uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.UserFollow, error)
	GetUserFollowerCount(ctx context.Context, userID uint64) (int64, error)
	GetUserFollowingCount(ctx context.Context, userID uint64) (int64, error)
	GetUserFollow(ctx context.Context, userID uint64, followingID uint64) (*model.UserFollow, error)
	GetFollowingIDs(ctx context.Context, userID uint64, limit int) ([]uint64, error)
	GetActiveFollowingIDs(ctx context.Context, userID uint64, limit int) ([]uint64, error)
	CreateUserFollow(ctx context.Context, userFollow *model.UserFollow) (int64, error)
	DeleteUserFollow(ctx context.Context, userFollow *model.UserFollow) (int64, error)
}

type UserFollowRepoImpl struct {
	db *gorm.DB
}

func NewUserFollowRepo(db *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: db}
}

// GetUserFollowers 游标分页获取用户的粉丝列表
// 游标锚定 (created_at, follower_id)，并发新增关注不影响已翻过的页
func (s *UserFollowRepoImpl) GetUserFollowers(ctx context.Context, userID uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.UserFollow, error) {
	query := s.db.WithContext(ctx).Where("following_id = ?", userID)
	if cursorTs != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND follower_id < ?)",
			nanoTime(*cursorTs), nanoTime(*cursorTs), cursorID,
		)
	}

	var userFollows []*model.UserFollow
	result := query.
		Order("created_at DESC, follower_id DESC").
		Limit(limit).
		Find(&userFollows)

	if result.Error != nil {
		return nil, result.Error
	}
	return userFollows, nil
}

// GetUserFollowing 游标分页获取用户的关注列表，游标锚定 (created_at, following_id)
func (s *UserFollowRepoImpl) GetUserFollowing(ctx context.Context, userID uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.UserFollow, error) {
	query := s.db.WithContext(ctx).Where("follower_id = ?", userID)
	if cursorTs != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND following_id < ?)",
			nanoTime(*cursorTs), nanoTime(*cursorTs), cursorID,
		)
	}

	var userFollows []*model.UserFollow
	result := query.
		Order("created_at DESC, following_id DESC").
		Limit(limit).
		Find(&userFollows)

	if result.Error != nil {
		return nil, result.Error
	}
	return userFollows, nil
}

// GetUserFollowerCount 获取用户的粉丝数量
func (s *UserFollowRepoImpl) GetUserFollowerCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.UserFollow{}).
		Where("following_id = ?", userID).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetUserFollowingCount 获取用户的关注数量
func (s *UserFollowRepoImpl) GetUserFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetUserFollow 获取用户的关注关系
func (s *UserFollowRepoImpl) GetUserFollow(ctx context.Context, userID uint64, followingID uint64) (*model.UserFollow, error) {
	var userFollow model.UserFollow
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", userID, followingID).
		First(&userFollow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &userFollow, nil
}

// GetFollowingIDs 获取关注对象的 id 列表
func (s *UserFollowRepoImpl) GetFollowingIDs(ctx context.Context, userID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	result := s.db.WithContext(ctx).
		Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Limit(limit).
		Pluck("following_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

// GetActiveFollowingIDs 按最近发帖时间取关注对象子集，限制时间线合并的扇出
func (s *UserFollowRepoImpl) GetActiveFollowingIDs(ctx context.Context, userID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	result := s.db.WithContext(ctx).
		Model(&model.UserFollow{}).
		Select("user_follows.following_id").
		Joins("JOIN posts ON posts.user_id = user_follows.following_id AND posts.is_deleted = ?", false).
		Where("user_follows.follower_id = ?", userID).
		Group("user_follows.following_id").
		Order("MAX(posts.created_at) DESC").
		Limit(limit).
		Pluck("user_follows.following_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

// CreateUserFollow 创建用户的关注关系，重复关注为幂等空操作，返回实际插入的行数
func (s *UserFollowRepoImpl) CreateUserFollow(ctx context.Context, userFollow *model.UserFollow) (int64, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			DoNothing: true,
		}).
		Create(userFollow)
	return result.RowsAffected, result.Error
}

// DeleteUserFollow 删除用户的关注关系，边不存在时为空操作，返回实际删除的行数
func (s *UserFollowRepoImpl) DeleteUserFollow(ctx context.Context, userFollow *model.UserFollow) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", userFollow.FollowerID, userFollow.FollowingID).
		Delete(&model.UserFollow{})
	return result.RowsAffected, result.Error
}

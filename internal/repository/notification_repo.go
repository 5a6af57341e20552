package repository

import (
	"Lattice/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *model.Notification) (int64, error)
	GetNotificationByID(ctx context.Context, id uint64) (*model.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, recipientID uint64) (int64, error)
	MarkRead(ctx context.Context, recipientID, id uint64) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uint64) (int64, error)
}

type NotificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &NotificationRepoImpl{db: db}
}

// CreateNotification 落地通知记录，(kind, actor, recipient, subject) 唯一
// 重复投递命中唯一索引时为空操作，返回实际插入的行数
func (s *NotificationRepoImpl) CreateNotification(ctx context.Context, n *model.Notification) (int64, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			DoNothing: true,
		}).
		Create(n)
	return result.RowsAffected, result.Error
}

func (s *NotificationRepoImpl) GetNotificationByID(ctx context.Context, id uint64) (*model.Notification, error) {
	var n model.Notification
	err := s.db.WithContext(ctx).First(&n, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// ListByRecipient 游标分页获取通知历史
func (s *NotificationRepoImpl) ListByRecipient(ctx context.Context, recipientID uint64, cursorTs *int64, cursorID uint64, limit int) ([]*model.Notification, error) {
	query := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID)
	if cursorTs != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			nanoTime(*cursorTs), nanoTime(*cursorTs), cursorID,
		)
	}
	var list []*model.Notification
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (s *NotificationRepoImpl) CountUnread(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead 单条置为已读，只统计 false→true 的行，重复调用为空操作
func (s *NotificationRepoImpl) MarkRead(ctx context.Context, recipientID, id uint64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// MarkAllRead 全部置为已读，返回实际翻转的行数
func (s *NotificationRepoImpl) MarkAllRead(ctx context.Context, recipientID uint64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

package model

import (
	"time"
)

// 通知类型
const (
	NotificationKindFollow  = "follow"
	NotificationKindLike    = "like"
	NotificationKindComment = "comment"
)

type Notification struct {
	ID          uint64    `gorm:"primaryKey"`
	RecipientID uint64    `gorm:"not null;index:idx_recipient;uniqueIndex:idx_dedup" json:"recipientId"`
	ActorID     uint64    `gorm:"not null;uniqueIndex:idx_dedup" json:"actorId"`
	Kind        string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_dedup" json:"kind"`
	SubjectID   uint64    `gorm:"not null;default:0;uniqueIndex:idx_dedup" json:"subjectId"`
	IsRead      bool      `gorm:"type:tinyint(1);not null;default:0" json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

package model

import "time"

// NotificationEvent 社交动作产生的通知事件，经 Kafka 投递
// 去重键为 (Kind, ActorID, RecipientID, SubjectID)
type NotificationEvent struct {
	Kind        string    `json:"kind"`
	ActorID     uint64    `json:"actorId"`
	RecipientID uint64    `json:"recipientId"`
	SubjectID   uint64    `json:"subjectId"`
	CreatedAt   time.Time `json:"createdAt"`
}

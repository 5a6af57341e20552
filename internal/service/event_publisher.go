package service

import (
	"Lattice/internal/model"
	"context"
)

// EventPublisher 动作提交 GraphStore 之后、HTTP 响应之前的通知事件出口
// 投递语义为 at-least-once，重复由消费侧按去重键折叠
type EventPublisher interface {
	Publish(ctx context.Context, event *model.NotificationEvent) error
}

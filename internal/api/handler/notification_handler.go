package handler

import (
	"Lattice/internal/api/dto"
	"Lattice/internal/pkg/response"
	"Lattice/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationSvc service.NotificationService
}

func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

func (s *NotificationHandler) GetNotificationList(c *gin.Context) {
	userId := c.GetUint64("user_id")
	cursor := c.Query("cursor")
	limit := getLimit(c)

	page, err := s.notificationSvc.ListNotifications(c.Request.Context(), userId, cursor, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userId := c.GetUint64("user_id")
	count, err := s.notificationSvc.GetUnreadCount(c.Request.Context(), userId)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}

// MarkRead 标记单条已读
func (s *NotificationHandler) MarkRead(c *gin.Context) {
	var req struct {
		NotificationID uint64 `json:"notification_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	userId := c.GetUint64("user_id")
	updated, err := s.notificationSvc.MarkRead(c.Request.Context(), userId, req.NotificationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.MarkReadResultDTO{Updated: updated})
}

func (s *NotificationHandler) MarkAllRead(c *gin.Context) {
	userId := c.GetUint64("user_id")
	updated, err := s.notificationSvc.MarkAllRead(c.Request.Context(), userId)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.MarkReadResultDTO{Updated: updated})
}

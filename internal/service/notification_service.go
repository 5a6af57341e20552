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

const unreadCacheExpiration = 7 * 24 * time.Hour

type NotificationService interface {
	Ingest(ctx context.Context, event *model.NotificationEvent) (bool, error)
	ListNotifications(ctx context.Context, accountID uint64, cursor string, limit int) (*dto.NotificationPageDTO, error)
	MarkRead(ctx context.Context, accountID, notificationID uint64) (int64, error)
	MarkAllRead(ctx context.Context, accountID uint64) (int64, error)
	GetUnreadCount(ctx context.Context, accountID uint64) (int64, error)
}

type NotificationServiceImpl struct {
	notificationRepo repository.NotificationRepo
	userRepo         repository.UserRepo
	postRepo         repository.PostRepo
}

func NewNotificationService(
	notificationRepo repository.NotificationRepo,
	userRepo repository.UserRepo,
	postRepo repository.PostRepo,
) NotificationService {
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		postRepo:         postRepo,
	}
}

// Ingest 消费一条通知事件：先落地记录，再增加未读计数
// 记录写入先于计数更新，读者看到计数变化时记录一定可见
// 去重键 (kind, actor, recipient, subject) 命中时折叠为空操作，返回 false
func (s *NotificationServiceImpl) Ingest(ctx context.Context, event *model.NotificationEvent) (bool, error) {
	// 自己触发的动作不通知自己，发布侧已拦截，这里兜底
	if event.ActorID == event.RecipientID {
		return false, nil
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	inserted, err := s.notificationRepo.CreateNotification(ctx, &model.Notification{
		RecipientID: event.RecipientID,
		ActorID:     event.ActorID,
		Kind:        event.Kind,
		SubjectID:   event.SubjectID,
		CreatedAt:   createdAt,
	})
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		return false, nil
	}

	key := consts.NotifyUnreadKey + strconv.FormatUint(event.RecipientID, 10)
	if _, err = redis.IncrIfExists(ctx, key, 1); err != nil {
		log.WarnContext(ctx, "bump unread count failed", "recipient", event.RecipientID, "err", err)
	}
	return true, nil
}

// ListNotifications 游标分页获取通知历史
func (s *NotificationServiceImpl) ListNotifications(ctx context.Context, accountID uint64, cursor string, limit int) (*dto.NotificationPageDTO, error) {
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

	records, err := s.notificationRepo.ListByRecipient(ctx, accountID, cursorTs, cursorID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}

	nicknames, previews, err := s.loadSubjects(ctx, records)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.NotificationDTO, 0, len(records))
	for _, r := range records {
		item := &dto.NotificationDTO{}
		_ = copier.Copy(item, r)
		item.CreatedAt = r.CreatedAt.Format("2006-01-02 15:04:05")
		item.ActorNickname = nicknames[r.ActorID]
		if r.Kind == model.NotificationKindLike {
			item.SubjectPreview = previews[r.SubjectID]
		}
		list = append(list, item)
	}

	page := &dto.NotificationPageDTO{List: list, HasMore: hasMore}
	if hasMore && len(records) > 0 {
		last := records[len(records)-1]
		page.NextCursor = util.EncodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

// loadSubjects 批量拉取触发者昵称与点赞对象帖子的内容摘要
// 点赞通知的 subject 是帖子，评论通知的 subject 是评论本身，不做帖子摘要
func (s *NotificationServiceImpl) loadSubjects(ctx context.Context, records []*model.Notification) (map[uint64]string, map[uint64]string, error) {
	actorIDs := make([]uint64, 0, len(records))
	postIDs := make([]uint64, 0, len(records))
	seen := make(map[uint64]bool, len(records))
	for _, r := range records {
		if !seen[r.ActorID] {
			seen[r.ActorID] = true
			actorIDs = append(actorIDs, r.ActorID)
		}
		if r.Kind == model.NotificationKindLike {
			postIDs = append(postIDs, r.SubjectID)
		}
	}

	nicknames := make(map[uint64]string, len(actorIDs))
	if len(actorIDs) > 0 {
		users, err := s.userRepo.GetUserByIds(ctx, actorIDs)
		if err != nil {
			return nil, nil, err
		}
		for _, u := range users {
			nicknames[u.ID] = u.Nickname
		}
	}

	previews := make(map[uint64]string, len(postIDs))
	if len(postIDs) > 0 {
		// 墓碑帖查不出来，摘要留空
		posts, err := s.postRepo.GetPostByIds(ctx, postIDs)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range posts {
			previews[p.ID] = subjectExcerpt(p.Content)
		}
	}
	return nicknames, previews, nil
}

func subjectExcerpt(content string) string {
	const maxRunes = 50
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes])
}

// MarkRead 单条已读，false→true 为单调转换，重复调用不重复扣计数
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, accountID, notificationID uint64) (int64, error) {
	record, err := s.notificationRepo.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, ErrNotificationNotFound
	}
	if record.RecipientID != accountID {
		return 0, ErrNotOwner
	}

	updated, err := s.notificationRepo.MarkRead(ctx, accountID, notificationID)
	if err != nil {
		return 0, err
	}
	s.decrUnread(ctx, accountID, updated)
	return updated, nil
}

// MarkAllRead 全部已读，未读计数按实际翻转的行数扣减
func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, accountID uint64) (int64, error) {
	updated, err := s.notificationRepo.MarkAllRead(ctx, accountID)
	if err != nil {
		return 0, err
	}
	s.decrUnread(ctx, accountID, updated)
	return updated, nil
}

// GetUnreadCount 未读计数，读穿缓存，计数缺失时由通知表重算
func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, accountID uint64) (int64, error) {
	key := consts.NotifyUnreadKey + strconv.FormatUint(accountID, 10)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	realCount, err := s.notificationRepo.CountUnread(ctx, accountID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, unreadCacheExpiration)
	return realCount, nil
}

func (s *NotificationServiceImpl) decrUnread(ctx context.Context, accountID uint64, delta int64) {
	if delta <= 0 {
		return
	}
	key := consts.NotifyUnreadKey + strconv.FormatUint(accountID, 10)
	underflow, err := redis.DecrClamp(ctx, key, delta)
	if err != nil {
		log.WarnContext(ctx, "decr unread count failed", "recipient", accountID, "err", err)
		return
	}
	if underflow {
		// 计数下溢说明之前漏掉了增量，钳到 0 并记录，不向调用方传播
		log.WarnContext(ctx, "unread counter underflow clamped", "recipient", accountID)
	}
}

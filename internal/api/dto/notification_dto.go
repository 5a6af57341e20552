package dto

type NotificationDTO struct {
	ID             uint64 `json:"id"`
	Kind           string `json:"kind"`
	ActorID        uint64 `json:"actor_id"`
	ActorNickname  string `json:"actor_nickname"`
	SubjectID      uint64 `json:"subject_id,omitempty"`
	SubjectPreview string `json:"subject_preview,omitempty"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
}

type NotificationPageDTO struct {
	List       []*NotificationDTO `json:"list"`
	HasMore    bool               `json:"has_more"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type MarkReadResultDTO struct {
	Updated int64 `json:"updated"`
}

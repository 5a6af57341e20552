package dto

type PostCreateDTO struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type PostUpdateDTO struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type PostSummaryDTO struct {
	ID           uint64 `json:"id"`
	UserID       uint64 `json:"user_id"`
	Content      string `json:"content"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	IsLiked      bool   `json:"is_liked"`
	CreatedAt    string `json:"created_at"`
}

type FeedPageDTO struct {
	List       []*PostSummaryDTO `json:"list"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

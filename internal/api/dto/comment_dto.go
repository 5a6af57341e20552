package dto

type CommentCreateDTO struct {
	PostID  uint64 `json:"post_id" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type CommentUpdateDTO struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type CommentDTO struct {
	ID        uint64 `json:"id"`
	PostID    uint64 `json:"post_id"`
	UserID    uint64 `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type CommentPageDTO struct {
	List       []*CommentDTO `json:"list"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

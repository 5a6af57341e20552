package dto

import "time"

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=6,max=50"`
	Nickname string `json:"nickname" validate:"required,min=1,max=15"`
}

type CredentialDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgetPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=50"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=50"`
}

type UserUpdateDTO struct {
	Nickname string `json:"nickname" validate:"omitempty,min=1,max=15"`
	Bio      string `json:"bio" validate:"omitempty,max=300"`
}

type FollowEdgeDTO struct {
	UserID    uint64 `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

type FollowPageDTO struct {
	List       []*FollowEdgeDTO `json:"list"`
	HasMore    bool             `json:"has_more"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type UserDTO struct {
	ID        uint64    `json:"user_id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Bio       string    `json:"bio,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

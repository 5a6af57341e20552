package service

import (
	"Lattice/internal/api/dto"
	"Lattice/internal/model"
	"Lattice/internal/repository"
	"context"
	"time"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uint64, req *dto.PostCreateDTO) (uint64, error)
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	UpdatePost(ctx context.Context, userID, postID uint64, content string) error
	DeletePost(ctx context.Context, userID, postID uint64) error
}

type PostServiceImpl struct {
	postRepo repository.PostRepo
	userRepo repository.UserRepo
}

func NewPostService(postRepo repository.PostRepo, userRepo repository.UserRepo) PostService {
	return &PostServiceImpl{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func (s *PostServiceImpl) CreatePost(ctx context.Context, userID uint64, req *dto.PostCreateDTO) (uint64, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil || user.IsDisabled {
		return 0, ErrUserNotFound
	}

	post := &model.Post{
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err = s.postRepo.CreatePost(ctx, post); err != nil {
		return 0, err
	}
	return post.ID, nil
}

func (s *PostServiceImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := s.postRepo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// UpdatePost 只有作者可以编辑
func (s *PostServiceImpl) UpdatePost(ctx context.Context, userID, postID uint64, content string) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return ErrNotOwner
	}
	return s.postRepo.UpdatePostContent(ctx, postID, content)
}

// DeletePost 作者软删除，点赞评论通知保留可解引用
func (s *PostServiceImpl) DeletePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return ErrNotOwner
	}
	return s.postRepo.DeletePost(ctx, postID)
}

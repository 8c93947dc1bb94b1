package service

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/maheshrc27/linkfeed/internal/repository"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*models.User, error)
	UpdateName(ctx context.Context, id int64, name string) (*models.User, error)
	UploadProfilePhoto(ctx context.Context, id int64, file *multipart.FileHeader) (*models.User, error)
}

type userService struct {
	u  repository.UserRepository
	ms MediaService
}

func NewUserService(u repository.UserRepository, ms MediaService) UserService {
	return &userService{
		u:  u,
		ms: ms,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	user, isExist, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateName renames a user. Posts and comments read the name at query time,
// so nothing else needs rewriting.
func (s *userService) UpdateName(ctx context.Context, id int64, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name is required")
	}

	if _, err := s.GetUserInfo(ctx, id); err != nil {
		return nil, err
	}

	if err := s.u.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	return s.GetUserInfo(ctx, id)
}

func (s *userService) UploadProfilePhoto(ctx context.Context, id int64, file *multipart.FileHeader) (*models.User, error) {
	if file == nil {
		return nil, NewValidationError("no file uploaded")
	}

	if _, err := s.GetUserInfo(ctx, id); err != nil {
		return nil, err
	}

	uploads, err := s.ms.Prepare([]*multipart.FileHeader{file}, true)
	if err != nil {
		return nil, err
	}

	stored, err := s.ms.Store(ctx, uploads)
	if err != nil {
		return nil, err
	}

	if err := s.u.UpdateProfilePhoto(ctx, id, stored[0].Path); err != nil {
		s.ms.Discard(ctx, stored)
		return nil, err
	}
	return s.GetUserInfo(ctx, id)
}

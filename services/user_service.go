package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/repositories"
	"github.com/courtside/tennis-tournament-system/storage"
)

type UpdateProfileInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Nickname  *string `json:"nickname,omitempty"`
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, requesterID, userID int, input UpdateProfileInput) (*models.User, error)
	UploadLogo(ctx context.Context, requesterID, userID int, contentType string, file io.Reader) (*models.User, error)
	Delete(ctx context.Context, requesterID, userID int) error
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{userRepo: userRepo, uploader: uploader}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, requesterID, userID int, input UpdateProfileInput) (*models.User, error) {
	if err := s.authorize(ctx, requesterID, userID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", ErrValidationFailed)
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Nickname != nil {
		user.Nickname = input.Nickname
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) UploadLogo(ctx context.Context, requesterID, userID int, contentType string, file io.Reader) (*models.User, error) {
	if err := s.authorize(ctx, requesterID, userID); err != nil {
		return nil, err
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("users/%d/logo%s", userID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload user logo: %w", err)
	}
	if err := s.userRepo.UpdateLogoKey(ctx, userID, &key); err != nil {
		return nil, fmt.Errorf("failed to persist user logo key: %w", err)
	}
	return s.GetByID(ctx, userID)
}

func (s *userService) Delete(ctx context.Context, requesterID, userID int) error {
	if err := s.authorize(ctx, requesterID, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// authorize allows the account owner and admins.
func (s *userService) authorize(ctx context.Context, requesterID, userID int) error {
	if requesterID == userID {
		return nil
	}
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return fmt.Errorf("failed to load requester %d: %w", requesterID, err)
	}
	if requester.Role != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	return nil
}

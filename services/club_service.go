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

type CreateClubInput struct {
	Name    string  `json:"name"`
	City    *string `json:"city,omitempty"`
	Address *string `json:"address,omitempty"`
}

type CreateCourtInput struct {
	Name    string              `json:"name"`
	Surface models.CourtSurface `json:"surface"`
	Indoor  bool                `json:"indoor"`
}

type UpdateClubInput struct {
	Name    *string `json:"name,omitempty"`
	City    *string `json:"city,omitempty"`
	Address *string `json:"address,omitempty"`
}

type ClubService interface {
	Create(ctx context.Context, ownerID int, input CreateClubInput) (*models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	ListByOwner(ctx context.Context, ownerID int) ([]*models.Club, error)
	Update(ctx context.Context, requesterID, clubID int, input UpdateClubInput) (*models.Club, error)
	Delete(ctx context.Context, requesterID, clubID int) error
	UploadLogo(ctx context.Context, requesterID, clubID int, contentType string, file io.Reader) (*models.Club, error)

	AddCourt(ctx context.Context, requesterID, clubID int, input CreateCourtInput) (*models.Court, error)
	ListCourts(ctx context.Context, clubID int) ([]*models.Court, error)
	UploadCourtPhoto(ctx context.Context, requesterID, clubID, courtID int, contentType string, file io.Reader) (*models.Court, error)
	RemoveCourt(ctx context.Context, requesterID, clubID, courtID int) error
}

type clubService struct {
	clubRepo  repositories.ClubRepository
	courtRepo repositories.CourtRepository
	userRepo  repositories.UserRepository
	uploader  storage.FileUploader
}

func NewClubService(
	clubRepo repositories.ClubRepository,
	courtRepo repositories.CourtRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) ClubService {
	return &clubService{
		clubRepo:  clubRepo,
		courtRepo: courtRepo,
		userRepo:  userRepo,
		uploader:  uploader,
	}
}

func (s *clubService) Create(ctx context.Context, ownerID int, input CreateClubInput) (*models.Club, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: club name is required", ErrValidationFailed)
	}
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load club owner %d: %w", ownerID, err)
	}
	if owner.Role != models.RoleOrganizer && owner.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	club := &models.Club{
		Name:    input.Name,
		City:    input.City,
		Address: input.Address,
		OwnerID: ownerID,
	}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

func (s *clubService) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	courts, err := s.courtRepo.ListByClub(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load courts for club %d: %w", id, err)
	}
	club.Courts = make([]models.Court, 0, len(courts))
	for _, court := range courts {
		club.Courts = append(club.Courts, *court)
	}

	populateClubDetails(club, s.uploader)
	return club, nil
}

func (s *clubService) ListByOwner(ctx context.Context, ownerID int) ([]*models.Club, error) {
	clubs, err := s.clubRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, club := range clubs {
		populateClubDetails(club, s.uploader)
	}
	return clubs, nil
}

func (s *clubService) Update(ctx context.Context, requesterID, clubID int, input UpdateClubInput) (*models.Club, error) {
	if err := s.authorizeOwner(ctx, requesterID, clubID); err != nil {
		return nil, err
	}
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: club name cannot be empty", ErrValidationFailed)
		}
		club.Name = *input.Name
	}
	if input.City != nil {
		club.City = input.City
	}
	if input.Address != nil {
		club.Address = input.Address
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		return nil, fmt.Errorf("failed to update club %d: %w", clubID, err)
	}
	populateClubDetails(club, s.uploader)
	return club, nil
}

func (s *clubService) Delete(ctx context.Context, requesterID, clubID int) error {
	if err := s.authorizeOwner(ctx, requesterID, clubID); err != nil {
		return err
	}
	if err := s.clubRepo.Delete(ctx, clubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return err
	}
	return nil
}

func (s *clubService) UploadLogo(ctx context.Context, requesterID, clubID int, contentType string, file io.Reader) (*models.Club, error) {
	if err := s.authorizeOwner(ctx, requesterID, clubID); err != nil {
		return nil, err
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("clubs/%d/logo%s", clubID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload club logo: %w", err)
	}
	if err := s.clubRepo.UpdateLogoKey(ctx, clubID, &key); err != nil {
		return nil, fmt.Errorf("failed to persist club logo key: %w", err)
	}
	return s.GetByID(ctx, clubID)
}

func (s *clubService) AddCourt(ctx context.Context, requesterID, clubID int, input CreateCourtInput) (*models.Court, error) {
	if err := s.authorizeOwner(ctx, requesterID, clubID); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: court name is required", ErrValidationFailed)
	}
	switch input.Surface {
	case models.SurfaceHard, models.SurfaceClay, models.SurfaceGrass:
	default:
		return nil, fmt.Errorf("%w: unknown court surface %q", ErrValidationFailed, input.Surface)
	}

	court := &models.Court{
		ClubID:  clubID,
		Name:    input.Name,
		Surface: input.Surface,
		Indoor:  input.Indoor,
	}
	if err := s.courtRepo.Create(ctx, court); err != nil {
		return nil, fmt.Errorf("failed to create court: %w", err)
	}
	return court, nil
}

func (s *clubService) ListCourts(ctx context.Context, clubID int) ([]*models.Court, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return s.courtRepo.ListByClub(ctx, clubID)
}

func (s *clubService) UploadCourtPhoto(ctx context.Context, requesterID, clubID, courtID int, contentType string, file io.Reader) (*models.Court, error) {
	if err := s.authorizeOwner(ctx, requesterID, clubID); err != nil {
		return nil, err
	}
	court, err := s.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	if court.ClubID != clubID {
		return nil, ErrForbiddenOperation
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("clubs/%d/courts/%d/photo%s", clubID, courtID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload court photo: %w", err)
	}
	if err := s.courtRepo.UpdatePhotoKey(ctx, courtID, &key); err != nil {
		return nil, fmt.Errorf("failed to persist court photo key: %w", err)
	}

	court.PhotoKey = &key
	if url := s.uploader.GetPublicURL(key); url != "" {
		court.PhotoURL = &url
	}
	return court, nil
}

func (s *clubService) RemoveCourt(ctx context.Context, requesterID, clubID, courtID int) error {
	if err := s.authorizeOwner(ctx, requesterID, clubID); err != nil {
		return err
	}
	court, err := s.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return ErrCourtNotFound
		}
		return err
	}
	if court.ClubID != clubID {
		return ErrForbiddenOperation
	}
	return s.courtRepo.Delete(ctx, courtID)
}

func (s *clubService) authorizeOwner(ctx context.Context, requesterID, clubID int) error {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return err
	}
	if club.OwnerID == requesterID {
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

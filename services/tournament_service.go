package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/repositories"
	"github.com/courtside/tennis-tournament-system/storage"
)

type CreateTournamentInput struct {
	Name            string               `json:"name"`
	Description     *string              `json:"description,omitempty"`
	ClubID          int                  `json:"club_id"`
	Format          models.BracketFormat `json:"format"`
	MatchFormat     models.MatchFormat   `json:"match_format"`
	GameFormat      models.GameFormat    `json:"game_format"`
	RegDate         time.Time            `json:"reg_date"`
	StartDate       time.Time            `json:"start_date"`
	EndDate         time.Time            `json:"end_date"`
	MaxParticipants int                  `json:"max_participants"`
}

type UpdateTournamentInput struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	RegDate         *time.Time `json:"reg_date,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	Update(ctx context.Context, requesterID, id int, input UpdateTournamentInput) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.TournamentFilter) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, requesterID, id int, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, requesterID, id int) error
	UploadLogo(ctx context.Context, requesterID, id int, contentType string, file io.Reader) (*models.Tournament, error)
	AdvanceDueStatuses(ctx context.Context, now time.Time) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	clubRepo       repositories.ClubRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
	notifier       Notifier
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	clubRepo repositories.ClubRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		clubRepo:       clubRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if err := validateTournamentDates(input.RegDate, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.MaxParticipants <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	switch input.Format {
	case models.FormatSingleElimination, models.FormatDoubleElimination, models.FormatRoundRobin:
	default:
		return nil, fmt.Errorf("%w: unknown bracket format %q", ErrValidationFailed, input.Format)
	}
	if input.MatchFormat.SetsToWin() == 0 {
		return nil, fmt.Errorf("%w: unknown match format %q", ErrValidationFailed, input.MatchFormat)
	}

	club, err := s.clubRepo.GetByID(ctx, input.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	if club.OwnerID != organizerID {
		return nil, ErrForbiddenOperation
	}

	tournament := &models.Tournament{
		Name:            input.Name,
		Description:     input.Description,
		ClubID:          input.ClubID,
		OrganizerID:     organizerID,
		Format:          input.Format,
		MatchFormat:     input.MatchFormat,
		GameFormat:      input.GameFormat,
		RegDate:         input.RegDate,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          models.StatusDraft,
		MaxParticipants: input.MaxParticipants,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if club, err := s.clubRepo.GetByID(ctx, tournament.ClubID); err == nil {
		populateClubDetails(club, s.uploader)
		tournament.Club = club
	} else {
		s.logger.Warn("failed to populate tournament club",
			slog.Int("tournament_id", id), slog.Any("error", err))
	}

	teams, err := s.teamRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for tournament %d: %w", id, err)
	}
	tournament.Teams = make([]models.Team, 0, len(teams))
	for _, team := range teams {
		populateUserDetails(team.Player1, s.uploader)
		populateUserDetails(team.Player2, s.uploader)
		tournament.Teams = append(tournament.Teams, *team)
	}

	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

// Update edits tournament details. Formats are immutable; details can only
// change before the bracket can exist, so draft and registration only.
func (s *tournamentService) Update(ctx context.Context, requesterID, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.authorizeOrganizer(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusDraft && tournament.Status != models.StatusRegistration {
		return nil, fmt.Errorf("%w: details are locked once the tournament is %s",
			ErrTournamentInvalidStatusTransition, tournament.Status)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: tournament name cannot be empty", ErrValidationFailed)
		}
		tournament.Name = *input.Name
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.RegDate != nil {
		tournament.RegDate = *input.RegDate
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = *input.EndDate
	}
	if err := validateTournamentDates(tournament.RegDate, tournament.StartDate, tournament.EndDate); err != nil {
		return nil, err
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants <= 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		count, err := s.teamRepo.CountByTournament(ctx, id)
		if err != nil {
			return nil, err
		}
		if *input.MaxParticipants < count {
			return nil, fmt.Errorf("%w: capacity %d is below the %d registered entries",
				ErrTournamentInvalidCapacity, *input.MaxParticipants, count)
		}
		tournament.MaxParticipants = *input.MaxParticipants
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.TournamentFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, tournament := range tournaments {
		populateTournamentLogoURL(tournament, s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, requesterID, id int, status models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.authorizeOrganizer(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, s.db, id, status); err != nil {
		return nil, err
	}
	tournament.Status = status
	s.notify(tournament.ID, "tournament-status-changed", map[string]interface{}{
		"tournament_id": tournament.ID,
		"status":        status,
	})
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, requesterID, id int) error {
	if _, err := s.authorizeOrganizer(ctx, requesterID, id); err != nil {
		return err
	}
	return s.tournamentRepo.Delete(ctx, id)
}

func (s *tournamentService) UploadLogo(ctx context.Context, requesterID, id int, contentType string, file io.Reader) (*models.Tournament, error) {
	if _, err := s.authorizeOrganizer(ctx, requesterID, id); err != nil {
		return nil, err
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("tournaments/%d/logo%s", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("failed to persist tournament logo key: %w", err)
	}
	return s.GetByID(ctx, id)
}

// AdvanceDueStatuses flips tournaments whose dates passed their current
// status. The background scheduler calls it on a fixed cadence.
func (s *tournamentService) AdvanceDueStatuses(ctx context.Context, now time.Time) error {
	due, err := s.tournamentRepo.ListDueForStatusChange(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list tournaments due for status change: %w", err)
	}

	for _, tournament := range due {
		var next models.TournamentStatus
		switch tournament.Status {
		case models.StatusDraft:
			next = models.StatusRegistration
		case models.StatusRegistration:
			next = models.StatusActive
		case models.StatusActive:
			next = models.StatusCompleted
		default:
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, s.db, tournament.ID, next); err != nil {
			s.logger.Error("failed to advance tournament status",
				slog.Int("tournament_id", tournament.ID),
				slog.String("from", string(tournament.Status)),
				slog.String("to", string(next)),
				slog.Any("error", err))
			continue
		}
		s.logger.Info("advanced tournament status",
			slog.Int("tournament_id", tournament.ID),
			slog.String("from", string(tournament.Status)),
			slog.String("to", string(next)))
		s.notify(tournament.ID, "tournament-status-changed", map[string]interface{}{
			"tournament_id": tournament.ID,
			"status":        next,
		})
	}
	return nil
}

func (s *tournamentService) authorizeOrganizer(ctx context.Context, requesterID, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.OrganizerID != requesterID {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

func (s *tournamentService) notify(tournamentID int, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(tournamentRoom(tournamentID), event, payload)
}

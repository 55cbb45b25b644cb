package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/repositories"
)

type RegisterTeamInput struct {
	Name      string          `json:"name"`
	Type      models.TeamType `json:"type"`
	Player1ID int             `json:"player1_id"`
	Player2ID *int            `json:"player2_id,omitempty"`
	Seed      *int            `json:"seed,omitempty"`
}

type TeamService interface {
	Register(ctx context.Context, tournamentID int, input RegisterTeamInput) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	UpdateSeed(ctx context.Context, requesterID, teamID int, seed *int) error
	Withdraw(ctx context.Context, requesterID, teamID int) error
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
	}
}

func (s *teamService) Register(ctx context.Context, tournamentID int, input RegisterTeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}
	switch input.Type {
	case models.TeamSingles:
		if input.Player2ID != nil {
			return nil, fmt.Errorf("%w: singles entry cannot have a second player", ErrValidationFailed)
		}
	case models.TeamDoubles:
		if input.Player2ID == nil {
			return nil, fmt.Errorf("%w: doubles entry requires a second player", ErrValidationFailed)
		}
		if *input.Player2ID == input.Player1ID {
			return nil, fmt.Errorf("%w: doubles partners must be distinct players", ErrValidationFailed)
		}
	default:
		return nil, fmt.Errorf("%w: unknown team type %q", ErrValidationFailed, input.Type)
	}
	if input.Seed != nil && *input.Seed < 1 {
		return nil, fmt.Errorf("%w: seed must be positive", ErrValidationFailed)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Status != models.StatusRegistration || time.Now().After(tournament.RegDate) {
		return nil, ErrRegistrationNotOpen
	}

	count, err := s.teamRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if count >= tournament.MaxParticipants {
		return nil, ErrTournamentFull
	}

	team := &models.Team{
		TournamentID: tournamentID,
		Name:         input.Name,
		Type:         input.Type,
		Player1ID:    input.Player1ID,
		Player2ID:    input.Player2ID,
		Seed:         input.Seed,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamAlreadyRegistered):
			return nil, ErrTeamAlreadyRegistered
		case errors.Is(err, repositories.ErrTeamPlayerInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to register team: %w", err)
	}
	return team, nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *teamService) UpdateSeed(ctx context.Context, requesterID, teamID int, seed *int) error {
	if seed != nil && *seed < 1 {
		return fmt.Errorf("%w: seed must be positive", ErrValidationFailed)
	}
	if _, err := s.authorizeTeamTournament(ctx, requesterID, teamID); err != nil {
		return err
	}
	return s.teamRepo.UpdateSeed(ctx, teamID, seed)
}

func (s *teamService) Withdraw(ctx context.Context, requesterID, teamID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	isMember := team.Player1ID == requesterID || (team.Player2ID != nil && *team.Player2ID == requesterID)
	if !isMember && tournament.OrganizerID != requesterID {
		return ErrForbiddenOperation
	}
	// Entries are locked once the draw exists.
	if tournament.Status != models.StatusRegistration && tournament.Status != models.StatusDraft {
		return ErrRegistrationNotOpen
	}
	return s.teamRepo.Delete(ctx, teamID)
}

func (s *teamService) authorizeTeamTournament(ctx context.Context, requesterID, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.OrganizerID != requesterID {
		return nil, ErrForbiddenOperation
	}
	return team, nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtside/tennis-tournament-system/brackets"
	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/repositories"
)

type BracketService interface {
	// Generate builds the topology for the tournament's format, creates one
	// match row per playable node and persists both in a single transaction.
	Generate(ctx context.Context, requesterID, tournamentID int) (*models.Bracket, error)
	GetByTournament(ctx context.Context, tournamentID int) (*models.Bracket, error)
	GetStandings(ctx context.Context, tournamentID int) ([]models.Standing, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	bracketRepo    repositories.BracketRepository
	matchRepo      repositories.MatchRepository
	notifier       Notifier
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	notifier Notifier,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		bracketRepo:    bracketRepo,
		matchRepo:      matchRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *bracketService) Generate(ctx context.Context, requesterID, tournamentID int) (*models.Bracket, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.OrganizerID != requesterID {
		return nil, ErrForbiddenOperation
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	if _, err := s.bracketRepo.GetByTournament(ctx, tournamentID); err == nil {
		return nil, ErrBracketAlreadyExists
	} else if !errors.Is(err, repositories.ErrBracketNotFound) {
		return nil, err
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}

	generator, err := brackets.NewGenerator(tournament.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	bracket, err := generator.Generate(ctx, brackets.GenerateParams{
		Tournament: tournament,
		Teams:      teams,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to generate bracket for tournament %d: %w", tournamentID, err)
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		// First pass: one match row per playable node, so advancement has
		// stable targets even for TBD fixtures.
		for i := range bracket.Nodes {
			node := &bracket.Nodes[i]
			if node.IsBye {
				continue
			}
			match := &models.Match{
				TournamentID: tournamentID,
				Segment:      node.Key.Segment,
				Round:        node.Key.Round,
				Position:     node.Key.Position,
				Team1ID:      node.Team1ID,
				Team2ID:      node.Team2ID,
				Status:       models.MatchStatusPending,
				MatchFormat:  tournament.MatchFormat,
				GameFormat:   tournament.GameFormat,
			}
			if match.IsPlayable() {
				match.Status = models.MatchStatusScheduled
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return fmt.Errorf("failed to create match for node %s: %w", node.Key, err)
			}
			matchID := match.ID
			node.MatchID = &matchID
		}

		// Second pass: persist the arena with the match ids bound.
		if err := s.bracketRepo.Create(ctx, tx, bracket); err != nil {
			if errors.Is(err, repositories.ErrBracketAlreadyExists) {
				return ErrBracketAlreadyExists
			}
			return fmt.Errorf("failed to persist bracket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("format", string(bracket.Format)),
		slog.Int("nodes", len(bracket.Nodes)))
	s.notifyBracket(ctx, tournamentID, bracket)
	return bracket, nil
}

func (s *bracketService) GetByTournament(ctx context.Context, tournamentID int) (*models.Bracket, error) {
	bracket, err := s.bracketRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotGenerated
		}
		return nil, err
	}
	return bracket, nil
}

// GetStandings projects the round-robin table from completed matches.
func (s *bracketService) GetStandings(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	bracket, err := s.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if bracket.Format != models.FormatRoundRobin {
		return nil, fmt.Errorf("%w: standings exist only for round robin", ErrValidationFailed)
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return nil, err
	}
	return brackets.ComputeStandings(teams, matches), nil
}

func (s *bracketService) notifyBracket(ctx context.Context, tournamentID int, bracket *models.Bracket) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(tournamentRoom(tournamentID), brackets.EventBracketUpdated, bracket)
}

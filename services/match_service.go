package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/courtside/tennis-tournament-system/brackets"
	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/repositories"
	"github.com/courtside/tennis-tournament-system/scoring"
)

// AwardPointResult is what the live scoring endpoint returns after one point.
type AwardPointResult struct {
	Match            *models.Match `json:"match"`
	IsMatchCompleted bool          `json:"is_match_completed"`
	ChampionTeamID   *int          `json:"champion_team_id,omitempty"`
	RequiresReset    bool          `json:"requires_reset,omitempty"`
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error)
	Start(ctx context.Context, matchID int) (*models.Match, error)
	AwardPoint(ctx context.Context, matchID int, side models.Side) (*AwardPointResult, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	bracketRepo    repositories.BracketRepository
	tournamentRepo repositories.TournamentRepository
	notifier       Notifier
	logger         *slog.Logger

	// locks serializes awardPoint per match; the score document is
	// read-modify-write and concurrent awards would lose updates.
	locks sync.Map
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	tournamentRepo repositories.TournamentRepository,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		bracketRepo:    bracketRepo,
		tournamentRepo: tournamentRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	return s.matchRepo.ListByTournament(ctx, tournamentID, filter)
}

// Start moves a scheduled match in progress and opens its score document.
func (s *matchService) Start(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsPlayable() {
		return nil, ErrMatchNotPlayable
	}
	switch match.Status {
	case models.MatchStatusScheduled, models.MatchStatusPostponed:
	case models.MatchStatusInProgress:
		return match, nil
	case models.MatchStatusCompleted:
		return nil, ErrMatchAlreadyCompleted
	default:
		return nil, fmt.Errorf("%w: match %d is %s", ErrValidationFailed, matchID, match.Status)
	}

	score := scoring.InitializeScore(match.MatchFormat)
	match.Score = &score
	match.Status = models.MatchStatusInProgress
	if err := s.matchRepo.UpdateScore(ctx, s.db, matchID, match.Score, match.Status, nil); err != nil {
		return nil, err
	}

	s.notify(match.TournamentID, brackets.EventScoreUpdated, match)
	return match, nil
}

// AwardPoint scores one point. When the point completes the match, the
// completion write and the bracket advancement commit in one transaction;
// a completed match without its advancement effect must never be observable.
func (s *matchService) AwardPoint(ctx context.Context, matchID int, side models.Side) (*AwardPointResult, error) {
	lock := s.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if match.Status != models.MatchStatusInProgress || match.Score == nil {
		return nil, ErrMatchNotInProgress
	}

	updated, err := scoring.AwardPoint(*match.Score, side, match.MatchFormat, match.GameFormat)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrScoreCompleted):
			return nil, ErrMatchAlreadyCompleted
		case errors.Is(err, scoring.ErrInvalidSide):
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, err
	}
	match.Score = &updated

	if updated.Winner == nil {
		if err := s.matchRepo.UpdateScore(ctx, s.db, matchID, match.Score, match.Status, nil); err != nil {
			return nil, err
		}
		s.notify(match.TournamentID, brackets.EventScoreUpdated, match)
		return &AwardPointResult{Match: match}, nil
	}

	result, err := s.completeMatch(ctx, match)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// completeMatch writes the final score and applies the bracket advancement
// atomically.
func (s *matchService) completeMatch(ctx context.Context, match *models.Match) (*AwardPointResult, error) {
	winnerID, loserID := match.WinnerAndLoser()
	if winnerID == nil {
		return nil, fmt.Errorf("match %d has a score winner but unresolved teams", match.ID)
	}
	match.Status = models.MatchStatusCompleted
	match.WinnerTeamID = winnerID

	var advanceResult *brackets.AdvanceResult
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.UpdateScore(ctx, tx, match.ID, match.Score, match.Status, match.WinnerTeamID); err != nil {
			return err
		}

		bracket, err := s.bracketRepo.GetByTournament(ctx, match.TournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				// Friendly match outside a draw; nothing to advance.
				return nil
			}
			return err
		}

		key := models.NodeKey{Segment: match.Segment, Round: match.Round, Position: match.Position}
		advanceResult, err = brackets.Advance(bracket, key, *winnerID, loserID)
		if err != nil {
			if errors.Is(err, brackets.ErrAdvancementConflict) {
				return fmt.Errorf("%w: %v", ErrAdvancementConflict, err)
			}
			return err
		}

		if err := s.applyAdvancement(ctx, tx, bracket, key, advanceResult); err != nil {
			return err
		}
		return s.bracketRepo.UpdateNodes(ctx, tx, bracket)
	})
	if err != nil {
		return nil, err
	}

	s.notify(match.TournamentID, brackets.EventMatchCompleted, match)

	result := &AwardPointResult{Match: match, IsMatchCompleted: true}
	if advanceResult != nil {
		result.RequiresReset = advanceResult.RequiresReset
		if advanceResult.BracketComplete && !advanceResult.RequiresReset {
			result.ChampionTeamID = advanceResult.ChampionTeamID
			s.crownChampion(ctx, match.TournamentID, advanceResult.ChampionTeamID)
		}
	}
	return result, nil
}

// applyAdvancement mirrors the node mutations onto the match rows: dependent
// fixtures receive their resolved teams, and nodes with both slots filled
// flip their match from pending to scheduled.
func (s *matchService) applyAdvancement(ctx context.Context, tx *sql.Tx, bracket *models.Bracket, completed models.NodeKey, result *brackets.AdvanceResult) error {
	for _, key := range result.Updated {
		if key == completed {
			continue
		}
		node := bracket.Node(key)
		if node == nil || node.MatchID == nil {
			continue
		}
		if err := s.matchRepo.UpdateTeams(ctx, tx, *node.MatchID, node.Team1ID, node.Team2ID); err != nil {
			return fmt.Errorf("failed to propagate teams to match %d: %w", *node.MatchID, err)
		}
	}
	for _, key := range result.Ready {
		node := bracket.Node(key)
		if node == nil || node.MatchID == nil {
			continue
		}
		if err := s.matchRepo.UpdateStatus(ctx, tx, *node.MatchID, models.MatchStatusScheduled); err != nil {
			return fmt.Errorf("failed to mark match %d schedulable: %w", *node.MatchID, err)
		}
	}
	return nil
}

func (s *matchService) crownChampion(ctx context.Context, tournamentID int, championTeamID *int) {
	if err := s.tournamentRepo.UpdateStatus(ctx, s.db, tournamentID, models.StatusCompleted); err != nil {
		s.logger.Error("failed to complete tournament after final",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	s.notify(tournamentID, brackets.EventTournamentWinner, map[string]interface{}{
		"tournament_id":    tournamentID,
		"champion_team_id": championTeamID,
	})
}

func (s *matchService) lockFor(matchID int) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(matchID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *matchService) notify(tournamentID int, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(tournamentRoom(tournamentID), event, payload)
}

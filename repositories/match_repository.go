package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/courtside/tennis-tournament-system/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament does not exist")
	ErrMatchTeamInvalid       = errors.New("match team does not exist")
	ErrMatchCourtInvalid      = errors.New("match court does not exist")
)

// MatchFilter narrows ListByTournament; nil fields are ignored.
type MatchFilter struct {
	Segment *models.Segment
	Round   *int
	Status  *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, id int, score *models.TennisScore, status models.MatchStatus, winnerTeamID *int) error
	UpdateTeams(ctx context.Context, exec SQLExecutor, id int, team1ID, team2ID *int) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	UpdateSchedule(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, segment, round, position, team1_id, team2_id,
	status, match_format, game_format, score, winner_team_id, court_id, scheduled_at, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	var scoreRaw []byte
	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.Segment,
		&match.Round,
		&match.Position,
		&match.Team1ID,
		&match.Team2ID,
		&match.Status,
		&match.MatchFormat,
		&match.GameFormat,
		&scoreRaw,
		&match.WinnerTeamID,
		&match.CourtID,
		&match.ScheduledAt,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(scoreRaw) > 0 {
		score := &models.TennisScore{}
		if err := json.Unmarshal(scoreRaw, score); err != nil {
			return nil, fmt.Errorf("failed to decode score document for match %d: %w", match.ID, err)
		}
		match.Score = score
	}
	return match, nil
}

func marshalScore(score *models.TennisScore) (interface{}, error) {
	if score == nil {
		return nil, nil
	}
	raw, err := json.Marshal(score)
	if err != nil {
		return nil, fmt.Errorf("failed to encode score document: %w", err)
	}
	return raw, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	scoreRaw, err := marshalScore(match.Score)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(tournament_id, segment, round, position, team1_id, team2_id,
			 status, match_format, game_format, score, winner_team_id, court_id, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err = exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.Segment,
		match.Round,
		match.Position,
		match.Team1ID,
		match.Team2ID,
		match.Status,
		match.MatchFormat,
		match.GameFormat,
		scoreRaw,
		match.WinnerTeamID,
		match.CourtID,
		match.ScheduledAt,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2
	addFilter := func(column string, value interface{}) {
		queryBuilder.WriteString(" AND " + column + " = $" + strconv.Itoa(placeholder))
		args = append(args, value)
		placeholder++
	}
	if filter.Segment != nil {
		addFilter("segment", *filter.Segment)
	}
	if filter.Round != nil {
		addFilter("round", *filter.Round)
	}
	if filter.Status != nil {
		addFilter("status", *filter.Status)
	}
	queryBuilder.WriteString(" ORDER BY segment ASC, round ASC, position ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id int, score *models.TennisScore, status models.MatchStatus, winnerTeamID *int) error {
	scoreRaw, err := marshalScore(score)
	if err != nil {
		return err
	}

	query := `UPDATE matches SET score = $1, status = $2, winner_team_id = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, scoreRaw, status, winnerTeamID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateTeams(ctx context.Context, exec SQLExecutor, id int, team1ID, team2ID *int) error {
	query := `UPDATE matches SET team1_id = $1, team2_id = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, team1ID, team2ID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `UPDATE matches SET court_id = $1, scheduled_at = $2, status = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, match.CourtID, match.ScheduledAt, match.Status, match.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_winner_team_id_fkey":
			return ErrMatchTeamInvalid
		case "matches_court_id_fkey":
			return ErrMatchCourtInvalid
		}
	}
	return err
}

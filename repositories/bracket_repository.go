package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/courtside/tennis-tournament-system/models"
)

var (
	ErrBracketNotFound          = errors.New("bracket not found")
	ErrBracketTournamentInvalid = errors.New("bracket tournament does not exist")
	ErrBracketAlreadyExists     = errors.New("bracket already generated for this tournament")
)

// BracketRepository stores the whole node arena as one JSONB document per
// tournament. Advancement rewrites the document inside the same transaction
// that completes the match.
type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByTournament(ctx context.Context, tournamentID int) (*models.Bracket, error)
	UpdateNodes(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func marshalNodes(bracket *models.Bracket) ([]byte, error) {
	raw, err := json.Marshal(bracket.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bracket nodes: %w", err)
	}
	return raw, nil
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	nodesRaw, err := marshalNodes(bracket)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO brackets (tournament_id, format, total_rounds, requires_reset, nodes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err = exec.QueryRowContext(ctx, query,
		bracket.TournamentID,
		bracket.Format,
		bracket.TotalRounds,
		bracket.RequiresReset,
		nodesRaw,
	).Scan(&bracket.ID)

	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.Bracket, error) {
	query := `
		SELECT id, tournament_id, format, total_rounds, requires_reset, nodes
		FROM brackets
		WHERE tournament_id = $1`

	bracket := &models.Bracket{}
	var nodesRaw []byte
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&bracket.ID,
		&bracket.TournamentID,
		&bracket.Format,
		&bracket.TotalRounds,
		&bracket.RequiresReset,
		&nodesRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket for tournament %d: %w", tournamentID, err)
	}
	if err := json.Unmarshal(nodesRaw, &bracket.Nodes); err != nil {
		return nil, fmt.Errorf("failed to decode bracket nodes for tournament %d: %w", tournamentID, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) UpdateNodes(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	nodesRaw, err := marshalNodes(bracket)
	if err != nil {
		return err
	}

	query := `UPDATE brackets SET nodes = $1, requires_reset = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, nodesRaw, bracket.RequiresReset, bracket.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM brackets WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "brackets_tournament_id_fkey":
			return ErrBracketTournamentInvalid
		case "brackets_tournament_id_key":
			return ErrBracketAlreadyExists
		}
	}
	return err
}

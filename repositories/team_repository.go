package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/courtside/tennis-tournament-system/models"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamTournamentInvalid = errors.New("team tournament does not exist")
	ErrTeamPlayerInvalid     = errors.New("team player does not exist")
	ErrTeamAlreadyRegistered = errors.New("player already registered in this tournament")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	UpdateSeed(ctx context.Context, id int, seed *int) error
	Delete(ctx context.Context, id int) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, tournament_id, name, type, player1_id, player2_id, seed, created_at`

func scanTeam(row interface{ Scan(...interface{}) error }) (*models.Team, error) {
	team := &models.Team{}
	err := row.Scan(
		&team.ID,
		&team.TournamentID,
		&team.Name,
		&team.Type,
		&team.Player1ID,
		&team.Player2ID,
		&team.Seed,
		&team.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (tournament_id, name, type, player1_id, player2_id, seed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.TournamentID,
		team.Name,
		team.Type,
		team.Player1ID,
		team.Player2ID,
		team.Seed,
	).Scan(&team.ID, &team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %d: %w", id, err)
	}
	return team, nil
}

// ListByTournament returns the entries with their player rows populated.
func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	query := `
		SELECT t.id, t.tournament_id, t.name, t.type, t.player1_id, t.player2_id, t.seed, t.created_at,
		       u1.id, u1.first_name, u1.last_name, u1.nickname, u1.email, u1.role, u1.rating, u1.created_at,
		       u2.id, u2.first_name, u2.last_name, u2.nickname, u2.email, u2.role, u2.rating, u2.created_at
		FROM teams t
		JOIN users u1 ON u1.id = t.player1_id
		LEFT JOIN users u2 ON u2.id = t.player2_id
		WHERE t.tournament_id = $1
		ORDER BY t.seed ASC NULLS LAST, t.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		player1 := &models.User{}
		var (
			p2ID        sql.NullInt64
			p2First     sql.NullString
			p2Last      sql.NullString
			p2Nickname  sql.NullString
			p2Email     sql.NullString
			p2Role      sql.NullString
			p2Rating    sql.NullInt64
			p2CreatedAt sql.NullTime
		)
		scanErr := rows.Scan(
			&team.ID, &team.TournamentID, &team.Name, &team.Type,
			&team.Player1ID, &team.Player2ID, &team.Seed, &team.CreatedAt,
			&player1.ID, &player1.FirstName, &player1.LastName, &player1.Nickname,
			&player1.Email, &player1.Role, &player1.Rating, &player1.CreatedAt,
			&p2ID, &p2First, &p2Last, &p2Nickname, &p2Email, &p2Role, &p2Rating, &p2CreatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		team.Player1 = player1
		if p2ID.Valid {
			player2 := &models.User{
				ID:        int(p2ID.Int64),
				FirstName: p2First.String,
				LastName:  p2Last.String,
				Email:     p2Email.String,
				Role:      models.UserRole(p2Role.String),
				CreatedAt: p2CreatedAt.Time,
			}
			if p2Nickname.Valid {
				nickname := p2Nickname.String
				player2.Nickname = &nickname
			}
			if p2Rating.Valid {
				rating := int(p2Rating.Int64)
				player2.Rating = &rating
			}
			team.Player2 = player2
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) UpdateSeed(ctx context.Context, id int, seed *int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET seed = $1 WHERE id = $2`, seed, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "teams_tournament_id_fkey":
			return ErrTeamTournamentInvalid
		case "teams_player1_id_fkey", "teams_player2_id_fkey":
			return ErrTeamPlayerInvalid
		case "teams_tournament_player_key":
			return ErrTeamAlreadyRegistered
		}
	}
	return err
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/courtside/tennis-tournament-system/models"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentClubInvalid   = errors.New("tournament club does not exist")
	ErrTournamentOwnerInvalid  = errors.New("tournament organizer does not exist")
	ErrTournamentNameConflict  = errors.New("tournament name already in use")
)

// TournamentFilter narrows List; nil fields are ignored.
type TournamentFilter struct {
	Status      *models.TournamentStatus
	ClubID      *int
	OrganizerID *int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter TournamentFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
	ListDueForStatusChange(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, description, club_id, organizer_id, format, match_format, game_format,
	reg_date, start_date, end_date, status, max_participants, created_at, logo_key`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.ClubID,
		&t.OrganizerID,
		&t.Format,
		&t.MatchFormat,
		&t.GameFormat,
		&t.RegDate,
		&t.StartDate,
		&t.EndDate,
		&t.Status,
		&t.MaxParticipants,
		&t.CreatedAt,
		&t.LogoKey,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, description, club_id, organizer_id, format, match_format, game_format,
			 reg_date, start_date, end_date, status, max_participants)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Description,
		t.ClubID,
		t.OrganizerID,
		t.Format,
		t.MatchFormat,
		t.GameFormat,
		t.RegDate,
		t.StartDate,
		t.EndDate,
		t.Status,
		t.MaxParticipants,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter TournamentFilter) ([]*models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`)

	args := []interface{}{}
	placeholder := 1
	addFilter := func(column string, value interface{}) {
		queryBuilder.WriteString(" AND " + column + " = $" + strconv.Itoa(placeholder))
		args = append(args, value)
		placeholder++
	}
	if filter.Status != nil {
		addFilter("status", *filter.Status)
	}
	if filter.ClubID != nil {
		addFilter("club_id", *filter.ClubID)
	}
	if filter.OrganizerID != nil {
		addFilter("organizer_id", *filter.OrganizerID)
	}
	queryBuilder.WriteString(" ORDER BY start_date ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, description = $2, format = $3, match_format = $4, game_format = $5,
		    reg_date = $6, start_date = $7, end_date = $8, max_participants = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.Description,
		t.Format,
		t.MatchFormat,
		t.GameFormat,
		t.RegDate,
		t.StartDate,
		t.EndDate,
		t.MaxParticipants,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ListDueForStatusChange returns tournaments whose dates passed their current
// status: draft past reg_date, registration past start_date, active past
// end_date. The background scheduler walks this list.
func (r *postgresTournamentRepository) ListDueForStatusChange(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE (status = 'draft' AND reg_date <= $1)
		   OR (status = 'registration' AND start_date <= $1)
		   OR (status = 'active' AND end_date <= $1)
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan due tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "tournaments_club_id_fkey":
			return ErrTournamentClubInvalid
		case "tournaments_organizer_id_fkey":
			return ErrTournamentOwnerInvalid
		case "tournaments_name_key":
			return ErrTournamentNameConflict
		}
	}
	return err
}

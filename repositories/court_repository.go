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
	ErrCourtNotFound    = errors.New("court not found")
	ErrCourtClubInvalid = errors.New("court club does not exist")
)

type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	GetByID(ctx context.Context, id int) (*models.Court, error)
	ListByClub(ctx context.Context, clubID int) ([]*models.Court, error)
	Update(ctx context.Context, court *models.Court) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

const courtColumns = `id, club_id, name, surface, indoor, created_at, photo_key`

func scanCourt(row interface{ Scan(...interface{}) error }) (*models.Court, error) {
	court := &models.Court{}
	err := row.Scan(
		&court.ID,
		&court.ClubID,
		&court.Name,
		&court.Surface,
		&court.Indoor,
		&court.CreatedAt,
		&court.PhotoKey,
	)
	if err != nil {
		return nil, err
	}
	return court, nil
}

func (r *postgresCourtRepository) Create(ctx context.Context, court *models.Court) error {
	query := `
		INSERT INTO courts (club_id, name, surface, indoor)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		court.ClubID,
		court.Name,
		court.Surface,
		court.Indoor,
	).Scan(&court.ID, &court.CreatedAt)

	return r.handleCourtError(err)
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, id int) (*models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE id = $1`
	court, err := scanCourt(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to scan court by id %d: %w", id, err)
	}
	return court, nil
}

func (r *postgresCourtRepository) ListByClub(ctx context.Context, clubID int) ([]*models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE club_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts for club %d: %w", clubID, err)
	}
	defer rows.Close()

	courts := make([]*models.Court, 0)
	for rows.Next() {
		court, scanErr := scanCourt(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan court row: %w", scanErr)
		}
		courts = append(courts, court)
	}
	return courts, rows.Err()
}

func (r *postgresCourtRepository) Update(ctx context.Context, court *models.Court) error {
	query := `UPDATE courts SET name = $1, surface = $2, indoor = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, court.Name, court.Surface, court.Indoor, court.ID)
	if err != nil {
		return r.handleCourtError(err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE courts SET photo_key = $1 WHERE id = $2`, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) handleCourtError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "courts_club_id_fkey":
			return ErrCourtClubInvalid
		}
	}
	return err
}

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
	ErrClubNotFound     = errors.New("club not found")
	ErrClubOwnerInvalid = errors.New("club owner does not exist")
	ErrClubNameConflict = errors.New("club name already in use")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	ListByOwner(ctx context.Context, ownerID int) ([]*models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

const clubColumns = `id, name, city, address, owner_id, created_at, logo_key`

func scanClub(row interface{ Scan(...interface{}) error }) (*models.Club, error) {
	club := &models.Club{}
	err := row.Scan(
		&club.ID,
		&club.Name,
		&club.City,
		&club.Address,
		&club.OwnerID,
		&club.CreatedAt,
		&club.LogoKey,
	)
	if err != nil {
		return nil, err
	}
	return club, nil
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (name, city, address, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		club.Name,
		club.City,
		club.Address,
		club.OwnerID,
	).Scan(&club.ID, &club.CreatedAt)

	return r.handleClubError(err)
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE id = $1`
	club, err := scanClub(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club by id %d: %w", id, err)
	}
	return club, nil
}

func (r *postgresClubRepository) ListByOwner(ctx context.Context, ownerID int) ([]*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE owner_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	clubs := make([]*models.Club, 0)
	for rows.Next() {
		club, scanErr := scanClub(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan club row: %w", scanErr)
		}
		clubs = append(clubs, club)
	}
	return clubs, rows.Err()
}

func (r *postgresClubRepository) Update(ctx context.Context, club *models.Club) error {
	query := `UPDATE clubs SET name = $1, city = $2, address = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, club.Name, club.City, club.Address, club.ID)
	if err != nil {
		return r.handleClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE clubs SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) handleClubError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "clubs_owner_id_fkey":
			return ErrClubOwnerInvalid
		case "clubs_name_key":
			return ErrClubNameConflict
		}
	}
	return err
}

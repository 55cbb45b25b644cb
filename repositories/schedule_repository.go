package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/tennis-tournament-system/models"
)

var ErrScheduleNotFound = errors.New("schedule not found")

type ScheduleRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, schedule *models.Schedule) error
	GetByTournament(ctx context.Context, tournamentID int) (*models.Schedule, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, tournamentID int, status models.ScheduleStatus) error
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

// Upsert replaces the per-tournament summary row; each allocation run
// supersedes the previous one.
func (r *postgresScheduleRepository) Upsert(ctx context.Context, exec SQLExecutor, schedule *models.Schedule) error {
	conflictsRaw, err := json.Marshal(schedule.Conflicts)
	if err != nil {
		return fmt.Errorf("failed to encode schedule conflicts: %w", err)
	}

	query := `
		INSERT INTO schedules (tournament_id, total_matches, scheduled_matches, status, conflicts, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tournament_id) DO UPDATE
		SET total_matches = EXCLUDED.total_matches,
		    scheduled_matches = EXCLUDED.scheduled_matches,
		    status = EXCLUDED.status,
		    conflicts = EXCLUDED.conflicts,
		    generated_at = EXCLUDED.generated_at
		RETURNING id`

	return exec.QueryRowContext(ctx, query,
		schedule.TournamentID,
		schedule.TotalMatches,
		schedule.ScheduledMatches,
		schedule.Status,
		conflictsRaw,
		schedule.GeneratedAt,
	).Scan(&schedule.ID)
}

func (r *postgresScheduleRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.Schedule, error) {
	query := `
		SELECT id, tournament_id, total_matches, scheduled_matches, status, conflicts, generated_at
		FROM schedules
		WHERE tournament_id = $1`

	schedule := &models.Schedule{}
	var conflictsRaw []byte
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&schedule.ID,
		&schedule.TournamentID,
		&schedule.TotalMatches,
		&schedule.ScheduledMatches,
		&schedule.Status,
		&conflictsRaw,
		&schedule.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to scan schedule for tournament %d: %w", tournamentID, err)
	}
	if len(conflictsRaw) > 0 {
		if err := json.Unmarshal(conflictsRaw, &schedule.Conflicts); err != nil {
			return nil, fmt.Errorf("failed to decode schedule conflicts for tournament %d: %w", tournamentID, err)
		}
	}
	return schedule, nil
}

func (r *postgresScheduleRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, tournamentID int, status models.ScheduleStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE schedules SET status = $1 WHERE tournament_id = $2`, status, tournamentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}

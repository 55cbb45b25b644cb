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
	ErrTimeSlotNotFound     = errors.New("time slot not found")
	ErrTimeSlotCourtInvalid = errors.New("time slot court does not exist")
	ErrTimeSlotMatchInvalid = errors.New("time slot match does not exist")
)

type TimeSlotRepository interface {
	BulkCreate(ctx context.Context, exec SQLExecutor, slots []*models.TimeSlot) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TimeSlot, error)
	MarkAvailable(ctx context.Context, exec SQLExecutor, ids []int) error
	DeleteUnbookedByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresTimeSlotRepository struct {
	db *sql.DB
}

func NewPostgresTimeSlotRepository(db *sql.DB) TimeSlotRepository {
	return &postgresTimeSlotRepository{db: db}
}

func (r *postgresTimeSlotRepository) BulkCreate(ctx context.Context, exec SQLExecutor, slots []*models.TimeSlot) error {
	query := `
		INSERT INTO time_slots (tournament_id, court_id, match_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for _, slot := range slots {
		err := exec.QueryRowContext(ctx, query,
			slot.TournamentID,
			slot.CourtID,
			slot.MatchID,
			slot.StartTime,
			slot.EndTime,
			slot.Status,
		).Scan(&slot.ID, &slot.CreatedAt)
		if err != nil {
			return r.handleTimeSlotError(err)
		}
	}
	return nil
}

func (r *postgresTimeSlotRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TimeSlot, error) {
	query := `
		SELECT id, tournament_id, court_id, match_id, start_time, end_time, status, created_at
		FROM time_slots
		WHERE tournament_id = $1
		ORDER BY start_time ASC, court_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query time slots for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	slots := make([]*models.TimeSlot, 0)
	for rows.Next() {
		slot := &models.TimeSlot{}
		scanErr := rows.Scan(
			&slot.ID,
			&slot.TournamentID,
			&slot.CourtID,
			&slot.MatchID,
			&slot.StartTime,
			&slot.EndTime,
			&slot.Status,
			&slot.CreatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan time slot row: %w", scanErr)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// MarkAvailable resets the given slots to available and clears their match
// reference. Used for orphan repair.
func (r *postgresTimeSlotRepository) MarkAvailable(ctx context.Context, exec SQLExecutor, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE time_slots SET status = $1, match_id = NULL WHERE id = ANY($2)`
	_, err := exec.ExecContext(ctx, query, models.SlotAvailable, pq.Array(ids))
	return err
}

// DeleteUnbookedByTournament clears the leftover free grid before a new
// allocation run writes a fresh one. Booked slots stay untouched.
func (r *postgresTimeSlotRepository) DeleteUnbookedByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM time_slots WHERE tournament_id = $1 AND status = $2`
	_, err := exec.ExecContext(ctx, query, tournamentID, models.SlotAvailable)
	return err
}

func (r *postgresTimeSlotRepository) handleTimeSlotError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "time_slots_court_id_fkey":
			return ErrTimeSlotCourtInvalid
		case "time_slots_match_id_fkey":
			return ErrTimeSlotMatchInvalid
		}
	}
	return err
}

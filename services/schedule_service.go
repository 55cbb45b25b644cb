package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/courtside/tennis-tournament-system/brackets"
	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/repositories"
	"github.com/courtside/tennis-tournament-system/scheduling"
)

type GenerateScheduleInput struct {
	CourtIDs        []int         `json:"court_ids"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	DayStart        time.Duration `json:"day_start"`
	DayEnd          time.Duration `json:"day_end"`
	SlotDurationMin int           `json:"slot_duration_min"`
	BreakMin        int           `json:"break_min"`
	MinimumRestMin  int           `json:"minimum_rest_min,omitempty"`
}

// ScheduleResult is the allocation outcome handed back to the API.
type ScheduleResult struct {
	Schedule  *models.Schedule          `json:"schedule"`
	Slots     []*models.TimeSlot        `json:"slots"`
	Conflicts []models.ScheduleConflict `json:"conflicts"`
}

type ScheduleService interface {
	Generate(ctx context.Context, requesterID, tournamentID int, input GenerateScheduleInput) (*ScheduleResult, error)
	GetByTournament(ctx context.Context, tournamentID int) (*ScheduleResult, error)
}

type scheduleService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	courtRepo      repositories.CourtRepository
	matchRepo      repositories.MatchRepository
	timeSlotRepo   repositories.TimeSlotRepository
	scheduleRepo   repositories.ScheduleRepository
	teamRepo       repositories.TeamRepository
	allocator      *scheduling.Allocator
	notifier       Notifier
	logger         *slog.Logger

	// locks serializes allocation per tournament; two concurrent runs both
	// read and rewrite the full slot set.
	locks sync.Map
}

func NewScheduleService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	courtRepo repositories.CourtRepository,
	matchRepo repositories.MatchRepository,
	timeSlotRepo repositories.TimeSlotRepository,
	scheduleRepo repositories.ScheduleRepository,
	teamRepo repositories.TeamRepository,
	allocator *scheduling.Allocator,
	notifier Notifier,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		db:             db,
		tournamentRepo: tournamentRepo,
		courtRepo:      courtRepo,
		matchRepo:      matchRepo,
		timeSlotRepo:   timeSlotRepo,
		scheduleRepo:   scheduleRepo,
		teamRepo:       teamRepo,
		allocator:      allocator,
		notifier:       notifier,
		logger:         logger,
	}
}

// Generate runs one allocation batch: repair orphans, lay the slot grid,
// assign matches, persist slots plus the summary row in one transaction.
// Conflicts are returned with the result, never as an error.
func (s *scheduleService) Generate(ctx context.Context, requesterID, tournamentID int, input GenerateScheduleInput) (*ScheduleResult, error) {
	lock := s.lockFor(tournamentID)
	lock.Lock()
	defer lock.Unlock()

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

	courts, err := s.loadCourts(ctx, input.CourtIDs)
	if err != nil {
		return nil, err
	}
	matches, err := s.loadMatchesWithTeams(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	existing, err := s.timeSlotRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	params := scheduling.Params{
		TournamentID: tournamentID,
		Matches:      matches,
		Courts:       courts,
		Window: scheduling.Window{
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
			DayStart:  input.DayStart,
			DayEnd:    input.DayEnd,
		},
		SlotDuration:  time.Duration(input.SlotDurationMin) * time.Minute,
		BreakDuration: time.Duration(input.BreakMin) * time.Minute,
		MinimumRest:   time.Duration(input.MinimumRestMin) * time.Minute,
		Existing:      existing,
	}
	allocation, err := s.allocator.Allocate(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	schedule := &models.Schedule{
		TournamentID:     tournamentID,
		TotalMatches:     allocation.TotalMatches,
		ScheduledMatches: allocation.ScheduledMatches,
		Status:           models.ScheduleDraft,
		Conflicts:        allocation.Conflicts,
		GeneratedAt:      time.Now().UTC(),
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.timeSlotRepo.MarkAvailable(ctx, tx, allocation.RepairedSlotIDs); err != nil {
			return fmt.Errorf("failed to repair orphaned slots: %w", err)
		}
		if err := s.timeSlotRepo.DeleteUnbookedByTournament(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("failed to clear previous free slots: %w", err)
		}
		if err := s.timeSlotRepo.BulkCreate(ctx, tx, allocation.Slots); err != nil {
			return fmt.Errorf("failed to persist time slots: %w", err)
		}
		for _, match := range matches {
			if match.ScheduledAt == nil {
				continue
			}
			if err := s.matchRepo.UpdateSchedule(ctx, tx, match); err != nil {
				return fmt.Errorf("failed to persist schedule of match %d: %w", match.ID, err)
			}
		}
		return s.scheduleRepo.Upsert(ctx, tx, schedule)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("total_matches", schedule.TotalMatches),
		slog.Int("scheduled_matches", schedule.ScheduledMatches),
		slog.Int("conflicts", len(schedule.Conflicts)),
		slog.Int("repaired_slots", len(allocation.RepairedSlotIDs)))

	result := &ScheduleResult{
		Schedule:  schedule,
		Slots:     allocation.Slots,
		Conflicts: allocation.Conflicts,
	}
	if s.notifier != nil {
		s.notifier.Notify(tournamentRoom(tournamentID), brackets.EventScheduleUpdated, result)
	}
	return result, nil
}

func (s *scheduleService) GetByTournament(ctx context.Context, tournamentID int) (*ScheduleResult, error) {
	schedule, err := s.scheduleRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	slots, err := s.timeSlotRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return &ScheduleResult{
		Schedule:  schedule,
		Slots:     slots,
		Conflicts: schedule.Conflicts,
	}, nil
}

func (s *scheduleService) loadCourts(ctx context.Context, courtIDs []int) ([]*models.Court, error) {
	courts := make([]*models.Court, 0, len(courtIDs))
	for _, id := range courtIDs {
		court, err := s.courtRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrCourtNotFound) {
				return nil, fmt.Errorf("%w: court %d", ErrCourtNotFound, id)
			}
			return nil, err
		}
		courts = append(courts, court)
	}
	return courts, nil
}

// loadMatchesWithTeams attaches rosters so the allocator can detect player
// level double bookings, not just team level ones.
func (s *scheduleService) loadMatchesWithTeams(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Team, len(teams))
	for _, team := range teams {
		byID[team.ID] = team
	}
	for _, match := range matches {
		if match.Team1ID != nil {
			match.Team1 = byID[*match.Team1ID]
		}
		if match.Team2ID != nil {
			match.Team2 = byID[*match.Team2ID]
		}
	}
	return matches, nil
}

func (s *scheduleService) lockFor(tournamentID int) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(tournamentID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

package scheduling

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/courtside/tennis-tournament-system/models"
)

var (
	ErrNoCourts        = errors.New("at least one court is required")
	ErrNoMatches       = errors.New("no matches to schedule")
	ErrInvalidWindow   = errors.New("invalid scheduling window")
	ErrInvalidDuration = errors.New("slot duration must be positive and fit the playing day")
)

// Window describes the playable range: calendar days from StartDate through
// EndDate inclusive, with play running from DayStart to DayEnd offsets within
// each day.
type Window struct {
	StartDate time.Time
	EndDate   time.Time
	DayStart  time.Duration
	DayEnd    time.Duration
}

// Params is one allocation request. Existing carries the tournament's current
// slot set so the allocator can repair orphans and keep clear of bookings it
// did not make.
type Params struct {
	TournamentID  int
	Matches       []*models.Match
	Courts        []*models.Court
	Window        Window
	SlotDuration  time.Duration
	BreakDuration time.Duration
	// MinimumRest is the required gap between two matches of the same team.
	// Zero disables the rule.
	MinimumRest time.Duration
	Existing    []*models.TimeSlot
}

// Result is the best-effort outcome: a full slot grid with assignments bound,
// plus every conflict the grid could not avoid. Conflicts never fail the
// allocation.
type Result struct {
	Slots            []*models.TimeSlot
	Conflicts        []models.ScheduleConflict
	RepairedSlotIDs  []int
	TotalMatches     int
	ScheduledMatches int
}

// Allocator assigns matches to court time slots in one batch pass. It holds
// no state between calls; serializing runs for the same tournament is the
// caller's job.
type Allocator struct {
	logger *slog.Logger
}

func NewAllocator(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{logger: logger}
}

// Allocate validates the request, repairs orphaned bookings, lays a
// fixed-cadence slot grid over every court and day of the window, then fills
// the earliest free slot per match in (round, position) order. Detection of
// court overlaps, player double bookings and rest violations runs after
// assignment and only annotates the result.
func (a *Allocator) Allocate(params Params) (*Result, error) {
	if err := a.validate(params); err != nil {
		return nil, err
	}

	result := &Result{}
	a.repairOrphans(params, result)

	slots := a.buildGrid(params)
	matches := schedulableMatches(params.Matches)
	result.TotalMatches = len(matches)

	a.assign(matches, slots, result)
	result.Slots = slots

	a.detectCourtOverlaps(params, slots, result)
	a.detectPlayerDoubleBookings(matches, params.SlotDuration, result)
	a.detectRestViolations(matches, params.SlotDuration, params.MinimumRest, result)

	return result, nil
}

func (a *Allocator) validate(params Params) error {
	if len(params.Courts) == 0 {
		return ErrNoCourts
	}
	if len(params.Matches) == 0 {
		return ErrNoMatches
	}
	w := params.Window
	if w.EndDate.Before(w.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidWindow)
	}
	if w.DayEnd <= w.DayStart {
		return fmt.Errorf("%w: day end not after day start", ErrInvalidWindow)
	}
	if params.SlotDuration <= 0 {
		return ErrInvalidDuration
	}
	if params.BreakDuration < 0 {
		return fmt.Errorf("%w: negative break", ErrInvalidDuration)
	}
	if w.DayEnd-w.DayStart < params.SlotDuration {
		return fmt.Errorf("%w: playing day shorter than one slot", ErrInvalidDuration)
	}
	return nil
}

// repairOrphans resets booked slots that lost their match reference, the
// leftover of a partially failed previous run. Repairs are logged, never
// surfaced as conflicts.
func (a *Allocator) repairOrphans(params Params, result *Result) {
	for _, slot := range params.Existing {
		if !slot.IsOrphaned() {
			continue
		}
		slot.Status = models.SlotAvailable
		result.RepairedSlotIDs = append(result.RepairedSlotIDs, slot.ID)
		a.logger.Warn("repaired orphaned time slot",
			slog.Int("slot_id", slot.ID),
			slog.Int("tournament_id", params.TournamentID))
	}
}

// buildGrid lays slots of SlotDuration separated by BreakDuration from
// DayStart until the day runs out, for every court and every day of the
// window. Grid cells overlapping an existing booked or blocked slot on the
// same court are dropped.
func (a *Allocator) buildGrid(params Params) []*models.TimeSlot {
	courts := make([]*models.Court, len(params.Courts))
	copy(courts, params.Courts)
	sort.Slice(courts, func(i, j int) bool { return courts[i].ID < courts[j].ID })

	var slots []*models.TimeSlot
	for day := dateOnly(params.Window.StartDate); !day.After(dateOnly(params.Window.EndDate)); day = day.AddDate(0, 0, 1) {
		dayEnd := day.Add(params.Window.DayEnd)
		for _, court := range courts {
			for start := day.Add(params.Window.DayStart); !start.Add(params.SlotDuration).After(dayEnd); start = start.Add(params.SlotDuration + params.BreakDuration) {
				courtID := court.ID
				slot := &models.TimeSlot{
					TournamentID: params.TournamentID,
					CourtID:      &courtID,
					StartTime:    start,
					EndTime:      start.Add(params.SlotDuration),
					Status:       models.SlotAvailable,
				}
				if blockedBy(slot, params.Existing) {
					continue
				}
				slots = append(slots, slot)
			}
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].StartTime.Equal(slots[j].StartTime) {
			return slots[i].StartTime.Before(slots[j].StartTime)
		}
		return *slots[i].CourtID < *slots[j].CourtID
	})
	return slots
}

func blockedBy(slot *models.TimeSlot, existing []*models.TimeSlot) bool {
	for _, other := range existing {
		if other.Status == models.SlotAvailable {
			continue
		}
		if other.CourtID == nil || slot.CourtID == nil || *other.CourtID != *slot.CourtID {
			continue
		}
		if slot.Overlaps(other) {
			return true
		}
	}
	return false
}

// schedulableMatches filters to fixtures still awaiting a slot and orders
// them round ascending, position ascending, so earlier rounds always play
// first and the pass is deterministic.
func schedulableMatches(matches []*models.Match) []*models.Match {
	eligible := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		switch m.Status {
		case models.MatchStatusPending, models.MatchStatusScheduled, models.MatchStatusPostponed:
			if m.ScheduledAt == nil {
				eligible = append(eligible, m)
			}
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Round != eligible[j].Round {
			return eligible[i].Round < eligible[j].Round
		}
		return eligible[i].Position < eligible[j].Position
	})
	return eligible
}

// assign books the earliest free slot per match. Matches left over when the
// grid runs out become a time_conflict, not an error.
func (a *Allocator) assign(matches []*models.Match, slots []*models.TimeSlot, result *Result) {
	next := 0
	var unassigned []int
	for _, match := range matches {
		if next >= len(slots) {
			unassigned = append(unassigned, match.ID)
			continue
		}
		slot := slots[next]
		next++

		matchID := match.ID
		slot.MatchID = &matchID
		slot.Status = models.SlotBooked

		start := slot.StartTime
		match.ScheduledAt = &start
		match.CourtID = slot.CourtID
		result.ScheduledMatches++
	}

	if len(unassigned) > 0 {
		result.Conflicts = append(result.Conflicts, models.ScheduleConflict{
			Type:     models.ConflictTime,
			Message:  fmt.Sprintf("%d matches could not be placed within the window", len(unassigned)),
			Severity: models.SeverityHigh,
			MatchIDs: unassigned,
		})
	}
}

// detectCourtOverlaps checks every pair of bookings on the same court,
// including bookings that predate this run.
func (a *Allocator) detectCourtOverlaps(params Params, slots []*models.TimeSlot, result *Result) {
	booked := make([]*models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Status == models.SlotBooked {
			booked = append(booked, slot)
		}
	}
	for _, slot := range params.Existing {
		if slot.Status == models.SlotBooked {
			booked = append(booked, slot)
		}
	}

	for i := 0; i < len(booked); i++ {
		for j := i + 1; j < len(booked); j++ {
			s1, s2 := booked[i], booked[j]
			if s1.CourtID == nil || s2.CourtID == nil || *s1.CourtID != *s2.CourtID {
				continue
			}
			if !s1.Overlaps(s2) {
				continue
			}
			conflict := models.ScheduleConflict{
				Type: models.ConflictCourtOverlap,
				Message: fmt.Sprintf("court %d double booked at %s",
					*s1.CourtID, s1.StartTime.Format(time.RFC3339)),
				Severity: models.SeverityHigh,
			}
			if s1.MatchID != nil {
				conflict.MatchIDs = append(conflict.MatchIDs, *s1.MatchID)
			}
			if s2.MatchID != nil {
				conflict.MatchIDs = append(conflict.MatchIDs, *s2.MatchID)
			}
			result.Conflicts = append(result.Conflicts, conflict)
		}
	}
}

// bookingWindow is one team's committed interval, used for the player rules.
type bookingWindow struct {
	matchID int
	start   time.Time
	end     time.Time
}

// participantBookings groups the scheduled intervals per participant. The key
// is the player id when the team roster is loaded and falls back to the team
// id otherwise; doubles partners are tracked individually.
func participantBookings(matches []*models.Match, slotDuration time.Duration) map[string][]bookingWindow {
	bookings := make(map[string][]bookingWindow)
	add := func(key string, m *models.Match) {
		bookings[key] = append(bookings[key], bookingWindow{
			matchID: m.ID,
			start:   *m.ScheduledAt,
			end:     m.ScheduledAt.Add(slotDuration),
		})
	}
	keysOf := func(teamID *int, team *models.Team) []string {
		if team != nil {
			keys := make([]string, 0, 2)
			for _, id := range team.PlayerIDs() {
				keys = append(keys, fmt.Sprintf("player:%d", id))
			}
			return keys
		}
		if teamID != nil {
			return []string{fmt.Sprintf("team:%d", *teamID)}
		}
		return nil
	}

	for _, m := range matches {
		if m.ScheduledAt == nil {
			continue
		}
		for _, key := range keysOf(m.Team1ID, m.Team1) {
			add(key, m)
		}
		for _, key := range keysOf(m.Team2ID, m.Team2) {
			add(key, m)
		}
	}
	for _, windows := range bookings {
		sort.Slice(windows, func(i, j int) bool { return windows[i].start.Before(windows[j].start) })
	}
	return bookings
}

func (a *Allocator) detectPlayerDoubleBookings(matches []*models.Match, slotDuration time.Duration, result *Result) {
	bookings := participantBookings(matches, slotDuration)
	keys := sortedKeys(bookings)
	seen := make(map[string]bool)

	for _, key := range keys {
		windows := bookings[key]
		for i := 1; i < len(windows); i++ {
			prev, cur := windows[i-1], windows[i]
			if prev.matchID == cur.matchID || !cur.start.Before(prev.end) {
				continue
			}
			pair := pairKey(prev.matchID, cur.matchID)
			if seen[pair] {
				continue
			}
			seen[pair] = true
			result.Conflicts = append(result.Conflicts, models.ScheduleConflict{
				Type: models.ConflictPlayerDoubleBooking,
				Message: fmt.Sprintf("%s booked in overlapping matches %d and %d",
					key, prev.matchID, cur.matchID),
				Severity: models.SeverityHigh,
				MatchIDs: []int{prev.matchID, cur.matchID},
			})
		}
	}
}

// detectRestViolations flags back-to-back matches of one team closer than
// MinimumRest. Overlapping pairs are already covered by the double booking
// rule and skipped here.
func (a *Allocator) detectRestViolations(matches []*models.Match, slotDuration, minimumRest time.Duration, result *Result) {
	if minimumRest <= 0 {
		return
	}
	bookings := participantBookings(matches, slotDuration)
	keys := sortedKeys(bookings)
	seen := make(map[string]bool)

	for _, key := range keys {
		windows := bookings[key]
		for i := 1; i < len(windows); i++ {
			prev, cur := windows[i-1], windows[i]
			gap := cur.start.Sub(prev.end)
			if prev.matchID == cur.matchID || gap < 0 || gap >= minimumRest {
				continue
			}
			pair := pairKey(prev.matchID, cur.matchID)
			if seen[pair] {
				continue
			}
			seen[pair] = true
			result.Conflicts = append(result.Conflicts, models.ScheduleConflict{
				Type: models.ConflictTime,
				Message: fmt.Sprintf("%s has only %s rest between matches %d and %d",
					key, gap, prev.matchID, cur.matchID),
				Severity: models.SeverityLow,
				MatchIDs: []int{prev.matchID, cur.matchID},
			})
		}
	}
}

func sortedKeys(m map[string][]bookingWindow) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func pairKey(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

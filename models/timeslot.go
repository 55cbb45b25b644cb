package models

import "time"

type TimeSlotStatus string

const (
	SlotAvailable TimeSlotStatus = "available"
	SlotBooked    TimeSlotStatus = "booked"
	SlotBlocked   TimeSlotStatus = "blocked"
)

// TimeSlot is one bookable interval on a court. A booked slot must carry a
// match reference; a booked slot without one is an orphan the allocator
// repairs before assigning.
type TimeSlot struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	CourtID      *int           `json:"court_id,omitempty" db:"court_id"`
	MatchID      *int           `json:"match_id,omitempty" db:"match_id"`
	StartTime    time.Time      `json:"start_time" db:"start_time"`
	EndTime      time.Time      `json:"end_time" db:"end_time"`
	Status       TimeSlotStatus `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// Duration is derived from the interval, never stored.
func (t *TimeSlot) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

// Overlaps reports whether two [start,end) intervals intersect.
func (t *TimeSlot) Overlaps(other *TimeSlot) bool {
	return t.StartTime.Before(other.EndTime) && other.StartTime.Before(t.EndTime)
}

// IsOrphaned reports the booked-without-match integrity fault.
func (t *TimeSlot) IsOrphaned() bool {
	return t.Status == SlotBooked && t.MatchID == nil
}

type ConflictType string

const (
	ConflictCourtOverlap        ConflictType = "court_overlap"
	ConflictPlayerDoubleBooking ConflictType = "player_double_booking"
	ConflictTime                ConflictType = "time_conflict"
)

type ConflictSeverity string

const (
	SeverityLow    ConflictSeverity = "low"
	SeverityMedium ConflictSeverity = "medium"
	SeverityHigh   ConflictSeverity = "high"
)

// ScheduleConflict is best-effort warning data; it never blocks allocation.
type ScheduleConflict struct {
	Type     ConflictType     `json:"type"`
	Message  string           `json:"message"`
	Severity ConflictSeverity `json:"severity"`
	MatchIDs []int            `json:"match_ids,omitempty"`
}

type ScheduleStatus string

const (
	ScheduleDraft      ScheduleStatus = "draft"
	SchedulePublished  ScheduleStatus = "published"
	ScheduleInProgress ScheduleStatus = "in_progress"
	ScheduleCompleted  ScheduleStatus = "completed"
	ScheduleCanceled   ScheduleStatus = "canceled"
)

// Schedule is the per-tournament allocation summary.
type Schedule struct {
	ID               int                `json:"id" db:"id"`
	TournamentID     int                `json:"tournament_id" db:"tournament_id"`
	TotalMatches     int                `json:"total_matches" db:"total_matches"`
	ScheduledMatches int                `json:"scheduled_matches" db:"scheduled_matches"`
	Status           ScheduleStatus     `json:"status" db:"status"`
	Conflicts        []ScheduleConflict `json:"conflicts" db:"-"`
	GeneratedAt      time.Time          `json:"generated_at" db:"generated_at"`
}

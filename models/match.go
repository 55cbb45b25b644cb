package models

import "time"

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
	MatchStatusPostponed  MatchStatus = "postponed"
	MatchStatusBye        MatchStatus = "bye"
)

// Match is one bracket fixture. Team references are nil until seeding or
// advancement resolves them; Score is embedded as a JSON document and owned
// exclusively by this match.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Segment      Segment     `json:"segment" db:"segment"`
	Round        int         `json:"round" db:"round"`
	Position     int         `json:"position" db:"position"`
	Team1ID      *int        `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *int        `json:"team2_id,omitempty" db:"team2_id"`
	Status       MatchStatus `json:"status" db:"status"`
	MatchFormat  MatchFormat `json:"match_format" db:"match_format"`
	GameFormat   GameFormat  `json:"game_format" db:"game_format"`
	Score        *TennisScore `json:"score,omitempty" db:"-"`
	WinnerTeamID *int        `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CourtID      *int        `json:"court_id,omitempty" db:"court_id"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	// Populated by services, not mapped directly.
	Team1 *Team `json:"team1,omitempty" db:"-"`
	Team2 *Team `json:"team2,omitempty" db:"-"`
}

// IsPlayable reports whether both team slots are resolved.
func (m *Match) IsPlayable() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}

// WinnerAndLoser resolves the score winner side to team ids. Both are nil
// when the score has no winner or a team slot is unresolved.
func (m *Match) WinnerAndLoser() (winnerID, loserID *int) {
	if m.Score == nil || m.Score.Winner == nil || m.Team1ID == nil || m.Team2ID == nil {
		return nil, nil
	}
	if *m.Score.Winner == SideTeam1 {
		return m.Team1ID, m.Team2ID
	}
	return m.Team2ID, m.Team1ID
}

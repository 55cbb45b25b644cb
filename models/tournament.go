package models

import "time"

// TournamentStatus values mirror the ENUM in the database.
type TournamentStatus string

const (
	StatusDraft        TournamentStatus = "draft"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Description     *string          `json:"description,omitempty" db:"description"`
	ClubID          int              `json:"club_id" db:"club_id"`
	OrganizerID     int              `json:"organizer_id" db:"organizer_id"`
	Format          BracketFormat    `json:"format" db:"format"`
	MatchFormat     MatchFormat      `json:"match_format" db:"match_format"`
	GameFormat      GameFormat       `json:"game_format" db:"game_format"`
	RegDate         time.Time        `json:"reg_date" db:"reg_date"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	EndDate         time.Time        `json:"end_date" db:"end_date"`
	Status          TournamentStatus `json:"status" db:"status"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	LogoKey         *string          `json:"-" db:"logo_key"`
	LogoURL         *string          `json:"logo_url,omitempty" db:"-"`

	// Optional linked entities, populated by services.
	Club    *Club   `json:"club,omitempty" db:"-"`
	Teams   []Team  `json:"teams,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}

package models

import "time"

type TeamType string

const (
	TeamSingles TeamType = "singles"
	TeamDoubles TeamType = "doubles"
)

// Team is one tournament entry: a single player or a doubles pair.
type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Type         TeamType  `json:"type" db:"type"`
	Player1ID    int       `json:"player1_id" db:"player1_id"`
	Player2ID    *int      `json:"player2_id,omitempty" db:"player2_id"`
	Seed         *int      `json:"seed,omitempty" db:"seed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Player1 *User `json:"player1,omitempty" db:"-"`
	Player2 *User `json:"player2,omitempty" db:"-"`
}

// PlayerIDs returns the distinct player ids of the entry.
func (t *Team) PlayerIDs() []int {
	ids := []int{t.Player1ID}
	if t.Player2ID != nil && *t.Player2ID != t.Player1ID {
		ids = append(ids, *t.Player2ID)
	}
	return ids
}

package models

// Side identifies one of the two teams in a match.
type Side string

const (
	SideTeam1 Side = "team1"
	SideTeam2 Side = "team2"
)

// MatchFormat selects how many sets are needed to win a match.
type MatchFormat string

const (
	MatchFormatBestOfThree MatchFormat = "best_of_3"
	MatchFormatBestOfFive  MatchFormat = "best_of_5"
)

// SetsToWin returns the set majority required by the format.
func (f MatchFormat) SetsToWin() int {
	if f == MatchFormatBestOfFive {
		return 3
	}
	return 2
}

// GameFormat selects the set/tiebreak rules.
type GameFormat string

const (
	// GameFormatRegular: 6-game sets with a two game margin, 7-5, or a
	// 7-point tiebreak at 6-6.
	GameFormatRegular GameFormat = "regular"
	// GameFormatTiebreak8: pro set to 8 games with a tiebreak at 8-8.
	GameFormatTiebreak8 GameFormat = "tiebreak_8"
	// GameFormatTiebreak10: regular sets, but the deciding set is a single
	// 10-point match tiebreak.
	GameFormatTiebreak10 GameFormat = "tiebreak_10"
)

// SetScore is the per-set line of a TennisScore. Completed sets are immutable.
type SetScore struct {
	SetNumber     int  `json:"set_number"`
	Team1Games    int  `json:"team1_games"`
	Team2Games    int  `json:"team2_games"`
	Team1Tiebreak *int `json:"team1_tiebreak,omitempty"`
	Team2Tiebreak *int `json:"team2_tiebreak,omitempty"`
	IsTiebreak    bool `json:"is_tiebreak"`
	IsCompleted   bool `json:"is_completed"`
}

// TennisScore is the full scoring state of one match. Points are kept as
// ordinals 0-3 (0, 15, 30, 40); the advantage state lives in Advantage.
// Winner is non-nil exactly when one side holds the set majority required
// by the match format.
type TennisScore struct {
	Team1Points int        `json:"team1_points"`
	Team2Points int        `json:"team2_points"`
	Team1Games  int        `json:"team1_games"`
	Team2Games  int        `json:"team2_games"`
	Team1Sets   int        `json:"team1_sets"`
	Team2Sets   int        `json:"team2_sets"`
	CurrentSet  int        `json:"current_set"`
	SetScores   []SetScore `json:"set_scores"`
	IsDeuce     bool       `json:"is_deuce"`
	Advantage   *Side      `json:"advantage,omitempty"`
	IsMatchPoint bool      `json:"is_match_point"`
	IsSetPoint   bool      `json:"is_set_point"`
	Winner       *Side     `json:"winner,omitempty"`
}

// PointLabels maps the point ordinals to the traditional call.
var PointLabels = [4]string{"0", "15", "30", "40"}

// Clone returns a deep copy, detaching the set list and pointer fields so the
// scoring engine can stay a pure value-in/value-out function.
func (s TennisScore) Clone() TennisScore {
	out := s
	out.SetScores = make([]SetScore, len(s.SetScores))
	for i, set := range s.SetScores {
		cp := set
		if set.Team1Tiebreak != nil {
			v := *set.Team1Tiebreak
			cp.Team1Tiebreak = &v
		}
		if set.Team2Tiebreak != nil {
			v := *set.Team2Tiebreak
			cp.Team2Tiebreak = &v
		}
		out.SetScores[i] = cp
	}
	if s.Advantage != nil {
		v := *s.Advantage
		out.Advantage = &v
	}
	if s.Winner != nil {
		v := *s.Winner
		out.Winner = &v
	}
	return out
}

// CurrentSetScore returns the open set line, or nil when none is open.
func (s *TennisScore) CurrentSetScore() *SetScore {
	for i := range s.SetScores {
		if s.SetScores[i].SetNumber == s.CurrentSet {
			return &s.SetScores[i]
		}
	}
	return nil
}

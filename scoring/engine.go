// Package scoring implements the tennis point/game/set/match state machine.
// Everything here is pure: callers pass a score value in and get the next
// score value out, which keeps the engine trivially safe to call from any
// goroutine and unit-testable without a database.
package scoring

import (
	"errors"

	"github.com/courtside/tennis-tournament-system/models"
)

var (
	// ErrInvalidSide rejects a point winner that is neither team1 nor team2.
	ErrInvalidSide = errors.New("point winner must be team1 or team2")
	// ErrScoreCompleted rejects a point awarded to a finished match. This is
	// a consistency error: the caller must check Winner before awarding.
	ErrScoreCompleted = errors.New("score already has a winner")
)

const (
	regularSetGames = 6
	proSetGames     = 8
	setTiebreakTo   = 7
	matchTiebreakTo = 10
)

// InitializeScore returns the zero score with one open set line.
func InitializeScore(matchFormat models.MatchFormat) models.TennisScore {
	score := models.TennisScore{
		CurrentSet: 1,
		SetScores:  []models.SetScore{{SetNumber: 1}},
	}
	return score
}

// AwardPoint applies a single point for side and returns the resulting score.
// The input value is never mutated. Game, set and match completion cascade in
// one call: a point can win a game, the game a set, and the set the match.
func AwardPoint(score models.TennisScore, side models.Side, matchFormat models.MatchFormat, gameFormat models.GameFormat) (models.TennisScore, error) {
	if side != models.SideTeam1 && side != models.SideTeam2 {
		return score, ErrInvalidSide
	}
	if score.Winner != nil {
		return score, ErrScoreCompleted
	}

	s := score.Clone()
	set := s.CurrentSetScore()
	if set == nil {
		s.SetScores = append(s.SetScores, models.SetScore{SetNumber: s.CurrentSet})
		set = &s.SetScores[len(s.SetScores)-1]
	}

	if set.IsTiebreak {
		awardTiebreakPoint(&s, set, side, matchFormat, gameFormat)
	} else {
		awardRegularPoint(&s, set, side, matchFormat, gameFormat)
	}

	recomputeDerived(&s, matchFormat, gameFormat)
	return s, nil
}

func awardRegularPoint(s *models.TennisScore, set *models.SetScore, side models.Side, matchFormat models.MatchFormat, gameFormat models.GameFormat) {
	switch {
	case s.Advantage != nil:
		if *s.Advantage == side {
			winGame(s, set, side, matchFormat, gameFormat)
		} else {
			// Back to deuce.
			s.Advantage = nil
			s.IsDeuce = true
		}
	case s.IsDeuce:
		s.IsDeuce = false
		adv := side
		s.Advantage = &adv
	default:
		pts := pointsOf(s, side)
		if pts < 3 {
			setPointsOf(s, side, pts+1)
			if s.Team1Points == 3 && s.Team2Points == 3 {
				s.IsDeuce = true
			}
		} else {
			// At 40 against less than 40: game.
			winGame(s, set, side, matchFormat, gameFormat)
		}
	}
}

func awardTiebreakPoint(s *models.TennisScore, set *models.SetScore, side models.Side, matchFormat models.MatchFormat, gameFormat models.GameFormat) {
	ensureTiebreakCounters(set)
	if side == models.SideTeam1 {
		*set.Team1Tiebreak++
	} else {
		*set.Team2Tiebreak++
	}

	target := tiebreakTarget(s, matchFormat, gameFormat)
	mine, theirs := *set.Team1Tiebreak, *set.Team2Tiebreak
	if side == models.SideTeam2 {
		mine, theirs = theirs, mine
	}
	if mine >= target && mine-theirs >= 2 {
		// A 6-6 (or 8-8) tiebreak closes the set one game up; a deciding
		// match tiebreak is the whole set.
		if side == models.SideTeam1 {
			set.Team1Games++
			s.Team1Games++
		} else {
			set.Team2Games++
			s.Team2Games++
		}
		winSet(s, set, side, matchFormat, gameFormat)
	}
}

func winGame(s *models.TennisScore, set *models.SetScore, side models.Side, matchFormat models.MatchFormat, gameFormat models.GameFormat) {
	if side == models.SideTeam1 {
		set.Team1Games++
		s.Team1Games++
	} else {
		set.Team2Games++
		s.Team2Games++
	}
	s.Team1Points, s.Team2Points = 0, 0
	s.IsDeuce = false
	s.Advantage = nil

	target := setTarget(gameFormat)
	mine, theirs := set.Team1Games, set.Team2Games
	if side == models.SideTeam2 {
		mine, theirs = theirs, mine
	}

	switch {
	case mine >= target && mine-theirs >= 2:
		winSet(s, set, side, matchFormat, gameFormat)
	case set.Team1Games == target && set.Team2Games == target:
		set.IsTiebreak = true
		ensureTiebreakCounters(set)
	}
}

func winSet(s *models.TennisScore, set *models.SetScore, side models.Side, matchFormat models.MatchFormat, gameFormat models.GameFormat) {
	set.IsCompleted = true
	if side == models.SideTeam1 {
		s.Team1Sets++
	} else {
		s.Team2Sets++
	}

	needed := matchFormat.SetsToWin()
	if s.Team1Sets >= needed || s.Team2Sets >= needed {
		winner := side
		s.Winner = &winner
		return
	}

	s.CurrentSet++
	s.Team1Games, s.Team2Games = 0, 0
	next := models.SetScore{SetNumber: s.CurrentSet}
	if gameFormat == models.GameFormatTiebreak10 && isDecidingSet(s.CurrentSet, matchFormat) {
		next.IsTiebreak = true
	}
	s.SetScores = append(s.SetScores, next)
	if next.IsTiebreak {
		ensureTiebreakCounters(&s.SetScores[len(s.SetScores)-1])
	}
}

// recomputeDerived refreshes IsSetPoint/IsMatchPoint. The flags annotate the
// state for clients and never feed back into transitions.
func recomputeDerived(s *models.TennisScore, matchFormat models.MatchFormat, gameFormat models.GameFormat) {
	s.IsSetPoint = false
	s.IsMatchPoint = false
	if s.Winner != nil {
		return
	}
	for _, side := range []models.Side{models.SideTeam1, models.SideTeam2} {
		if !pointWouldEndSet(s, side, matchFormat, gameFormat) {
			continue
		}
		s.IsSetPoint = true
		if setsOf(s, side)+1 >= matchFormat.SetsToWin() {
			s.IsMatchPoint = true
		}
	}
}

func pointWouldEndSet(s *models.TennisScore, side models.Side, matchFormat models.MatchFormat, gameFormat models.GameFormat) bool {
	set := s.CurrentSetScore()
	if set == nil {
		return false
	}
	if set.IsTiebreak {
		ensureTiebreakCounters(set)
		mine, theirs := *set.Team1Tiebreak, *set.Team2Tiebreak
		if side == models.SideTeam2 {
			mine, theirs = theirs, mine
		}
		target := tiebreakTarget(s, matchFormat, gameFormat)
		return mine+1 >= target && mine+1-theirs >= 2
	}
	if !pointWouldWinGame(s, side) {
		return false
	}
	mine, theirs := set.Team1Games, set.Team2Games
	if side == models.SideTeam2 {
		mine, theirs = theirs, mine
	}
	target := setTarget(gameFormat)
	return mine+1 >= target && mine+1-theirs >= 2
}

func pointWouldWinGame(s *models.TennisScore, side models.Side) bool {
	if s.Advantage != nil {
		return *s.Advantage == side
	}
	if s.IsDeuce {
		return false
	}
	return pointsOf(s, side) == 3
}

func tiebreakTarget(s *models.TennisScore, matchFormat models.MatchFormat, gameFormat models.GameFormat) int {
	if gameFormat == models.GameFormatTiebreak10 && isDecidingSet(s.CurrentSet, matchFormat) {
		return matchTiebreakTo
	}
	return setTiebreakTo
}

func setTarget(gameFormat models.GameFormat) int {
	if gameFormat == models.GameFormatTiebreak8 {
		return proSetGames
	}
	return regularSetGames
}

func isDecidingSet(setNumber int, matchFormat models.MatchFormat) bool {
	return setNumber == 2*matchFormat.SetsToWin()-1
}

func ensureTiebreakCounters(set *models.SetScore) {
	if set.Team1Tiebreak == nil {
		zero := 0
		set.Team1Tiebreak = &zero
	}
	if set.Team2Tiebreak == nil {
		zero := 0
		set.Team2Tiebreak = &zero
	}
}

func pointsOf(s *models.TennisScore, side models.Side) int {
	if side == models.SideTeam1 {
		return s.Team1Points
	}
	return s.Team2Points
}

func setPointsOf(s *models.TennisScore, side models.Side, points int) {
	if side == models.SideTeam1 {
		s.Team1Points = points
	} else {
		s.Team2Points = points
	}
}

func setsOf(s *models.TennisScore, side models.Side) int {
	if side == models.SideTeam1 {
		return s.Team1Sets
	}
	return s.Team2Sets
}

package scoring_test

import (
	"testing"

	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func award(t *testing.T, s models.TennisScore, side models.Side, n int, mf models.MatchFormat, gf models.GameFormat) models.TennisScore {
	t.Helper()
	var err error
	for i := 0; i < n; i++ {
		s, err = scoring.AwardPoint(s, side, mf, gf)
		if err != nil {
			t.Fatalf("award point %d: %v", i+1, err)
		}
	}
	return s
}

// winGame pushes one side through four straight points.
func winGame(t *testing.T, s models.TennisScore, side models.Side, mf models.MatchFormat, gf models.GameFormat) models.TennisScore {
	t.Helper()
	return award(t, s, side, 4, mf, gf)
}

func winSet(t *testing.T, s models.TennisScore, side models.Side, mf models.MatchFormat, gf models.GameFormat) models.TennisScore {
	t.Helper()
	for i := 0; i < 6; i++ {
		s = winGame(t, s, side, mf, gf)
	}
	return s
}

func TestAwardPointBasics(t *testing.T) {
	mf, gf := models.MatchFormatBestOfThree, models.GameFormatRegular

	Convey("Given a fresh best-of-3 score", t, func() {
		s := scoring.InitializeScore(mf)

		Convey("It starts with one open set and no winner", func() {
			So(s.CurrentSet, ShouldEqual, 1)
			So(len(s.SetScores), ShouldEqual, 1)
			So(s.Winner, ShouldBeNil)
		})

		Convey("Points progress through the 0-15-30-40 ordinals", func() {
			s = award(t, s, models.SideTeam1, 3, mf, gf)
			So(s.Team1Points, ShouldEqual, 3)
			So(s.Team2Points, ShouldEqual, 0)
			So(s.IsDeuce, ShouldBeFalse)
		})

		Convey("Four straight points win the game and reset the counters", func() {
			s = winGame(t, s, models.SideTeam1, mf, gf)
			So(s.Team1Games, ShouldEqual, 1)
			So(s.Team2Games, ShouldEqual, 0)
			So(s.Team1Points, ShouldEqual, 0)
			So(s.Team2Points, ShouldEqual, 0)
		})

		Convey("An unknown side is rejected without mutation", func() {
			_, err := scoring.AwardPoint(s, models.Side("team3"), mf, gf)
			So(err, ShouldEqual, scoring.ErrInvalidSide)
		})
	})
}

func TestDeuceAndAdvantage(t *testing.T) {
	mf, gf := models.MatchFormatBestOfThree, models.GameFormatRegular

	Convey("Given a game at 40-40", t, func() {
		s := scoring.InitializeScore(mf)
		s = award(t, s, models.SideTeam1, 3, mf, gf)
		s = award(t, s, models.SideTeam2, 3, mf, gf)
		So(s.IsDeuce, ShouldBeTrue)
		So(s.Advantage, ShouldBeNil)

		Convey("A point gives advantage, not the game", func() {
			s = award(t, s, models.SideTeam1, 1, mf, gf)
			So(s.IsDeuce, ShouldBeFalse)
			So(s.Advantage, ShouldNotBeNil)
			So(*s.Advantage, ShouldEqual, models.SideTeam1)
			So(s.Team1Games, ShouldEqual, 0)
		})

		Convey("Two consecutive points from deuce win the game", func() {
			s = award(t, s, models.SideTeam1, 2, mf, gf)
			So(s.Team1Games, ShouldEqual, 1)
			So(s.IsDeuce, ShouldBeFalse)
			So(s.Advantage, ShouldBeNil)
		})

		Convey("A point against the advantage returns to deuce", func() {
			s = award(t, s, models.SideTeam1, 1, mf, gf)
			s = award(t, s, models.SideTeam2, 1, mf, gf)
			So(s.IsDeuce, ShouldBeTrue)
			So(s.Advantage, ShouldBeNil)
			So(s.Team1Games, ShouldEqual, 0)
			So(s.Team2Games, ShouldEqual, 0)
		})

		Convey("Alternating points at deuce never move the games count", func() {
			for i := 0; i < 10; i++ {
				s = award(t, s, models.SideTeam1, 1, mf, gf)
				s = award(t, s, models.SideTeam2, 1, mf, gf)
			}
			So(s.Team1Games, ShouldEqual, 0)
			So(s.Team2Games, ShouldEqual, 0)
			So(s.IsDeuce, ShouldBeTrue)
		})
	})
}

func TestSetCompletion(t *testing.T) {
	mf, gf := models.MatchFormatBestOfThree, models.GameFormatRegular

	Convey("Given a set at 5-0", t, func() {
		s := scoring.InitializeScore(mf)
		for i := 0; i < 5; i++ {
			s = winGame(t, s, models.SideTeam1, mf, gf)
		}

		Convey("The sixth game closes the set and opens the next one", func() {
			s = winGame(t, s, models.SideTeam1, mf, gf)
			So(s.Team1Sets, ShouldEqual, 1)
			So(s.CurrentSet, ShouldEqual, 2)
			So(len(s.SetScores), ShouldEqual, 2)
			So(s.SetScores[0].IsCompleted, ShouldBeTrue)
			So(s.SetScores[0].Team1Games, ShouldEqual, 6)
			So(s.Team1Games, ShouldEqual, 0)
		})
	})

	Convey("Given a set at 5-5", t, func() {
		s := scoring.InitializeScore(mf)
		for i := 0; i < 5; i++ {
			s = winGame(t, s, models.SideTeam1, mf, gf)
			s = winGame(t, s, models.SideTeam2, mf, gf)
		}

		Convey("6-5 does not close the set, 7-5 does", func() {
			s = winGame(t, s, models.SideTeam1, mf, gf)
			So(s.Team1Sets, ShouldEqual, 0)
			s = winGame(t, s, models.SideTeam1, mf, gf)
			So(s.Team1Sets, ShouldEqual, 1)
			So(s.SetScores[0].Team1Games, ShouldEqual, 7)
			So(s.SetScores[0].Team2Games, ShouldEqual, 5)
		})

		Convey("6-6 starts a tiebreak decided at seven by two", func() {
			s = winGame(t, s, models.SideTeam1, mf, gf)
			s = winGame(t, s, models.SideTeam2, mf, gf)
			So(s.SetScores[0].IsTiebreak, ShouldBeTrue)

			s = award(t, s, models.SideTeam1, 6, mf, gf)
			s = award(t, s, models.SideTeam2, 6, mf, gf)
			// 6-6 in the tiebreak: next point is not enough.
			s = award(t, s, models.SideTeam1, 1, mf, gf)
			So(s.Team1Sets, ShouldEqual, 0)
			s = award(t, s, models.SideTeam1, 1, mf, gf)
			So(s.Team1Sets, ShouldEqual, 1)
			So(s.SetScores[0].Team1Games, ShouldEqual, 7)
			So(s.SetScores[0].Team2Games, ShouldEqual, 6)
			So(*s.SetScores[0].Team1Tiebreak, ShouldEqual, 8)
		})
	})
}

func TestMatchCompletion(t *testing.T) {
	mf, gf := models.MatchFormatBestOfThree, models.GameFormatRegular

	Convey("Given a best-of-3 match", t, func() {
		s := scoring.InitializeScore(mf)
		s = winSet(t, s, models.SideTeam1, mf, gf)

		Convey("One set is not enough", func() {
			So(s.Winner, ShouldBeNil)
			So(s.Team1Sets, ShouldEqual, 1)
		})

		Convey("The second set decides it and no further point is accepted", func() {
			s = winSet(t, s, models.SideTeam1, mf, gf)
			So(s.Winner, ShouldNotBeNil)
			So(*s.Winner, ShouldEqual, models.SideTeam1)
			So(s.Team1Sets, ShouldEqual, 2)

			_, err := scoring.AwardPoint(s, models.SideTeam1, mf, gf)
			So(err, ShouldEqual, scoring.ErrScoreCompleted)
		})
	})

	Convey("A best-of-5 match needs three sets", t, func() {
		mf := models.MatchFormatBestOfFive
		s := scoring.InitializeScore(mf)
		s = winSet(t, s, models.SideTeam2, mf, gf)
		s = winSet(t, s, models.SideTeam2, mf, gf)
		So(s.Winner, ShouldBeNil)
		s = winSet(t, s, models.SideTeam2, mf, gf)
		So(s.Winner, ShouldNotBeNil)
		So(*s.Winner, ShouldEqual, models.SideTeam2)
	})
}

func TestGameFormats(t *testing.T) {
	mf := models.MatchFormatBestOfThree

	Convey("A tiebreak_8 pro set runs to eight games", t, func() {
		gf := models.GameFormatTiebreak8
		s := scoring.InitializeScore(mf)
		for i := 0; i < 7; i++ {
			s = winGame(t, s, models.SideTeam1, mf, gf)
		}
		So(s.Team1Sets, ShouldEqual, 0)
		s = winGame(t, s, models.SideTeam1, mf, gf)
		So(s.Team1Sets, ShouldEqual, 1)
		So(s.SetScores[0].Team1Games, ShouldEqual, 8)
	})

	Convey("A tiebreak_8 set at 8-8 goes to a tiebreak", t, func() {
		gf := models.GameFormatTiebreak8
		s := scoring.InitializeScore(mf)
		for i := 0; i < 7; i++ {
			s = winGame(t, s, models.SideTeam1, mf, gf)
			s = winGame(t, s, models.SideTeam2, mf, gf)
		}
		s = winGame(t, s, models.SideTeam1, mf, gf)
		s = winGame(t, s, models.SideTeam2, mf, gf)
		So(s.SetScores[0].IsTiebreak, ShouldBeTrue)
		s = award(t, s, models.SideTeam2, 7, mf, gf)
		So(s.Team2Sets, ShouldEqual, 1)
	})

	Convey("A tiebreak_10 deciding set is a single 10-point tiebreak", t, func() {
		gf := models.GameFormatTiebreak10
		s := scoring.InitializeScore(mf)
		s = winSet(t, s, models.SideTeam1, mf, gf)
		s = winSet(t, s, models.SideTeam2, mf, gf)

		So(s.CurrentSet, ShouldEqual, 3)
		So(s.SetScores[2].IsTiebreak, ShouldBeTrue)

		s = award(t, s, models.SideTeam1, 9, mf, gf)
		So(s.Winner, ShouldBeNil)
		s = award(t, s, models.SideTeam1, 1, mf, gf)
		So(s.Winner, ShouldNotBeNil)
		So(*s.Winner, ShouldEqual, models.SideTeam1)
		So(*s.SetScores[2].Team1Tiebreak, ShouldEqual, 10)
	})
}

func TestDerivedFlags(t *testing.T) {
	mf, gf := models.MatchFormatBestOfThree, models.GameFormatRegular

	Convey("Set and match point flags follow the state", t, func() {
		s := scoring.InitializeScore(mf)
		for i := 0; i < 5; i++ {
			s = winGame(t, s, models.SideTeam1, mf, gf)
		}
		So(s.IsSetPoint, ShouldBeFalse)

		// 5-0, 40-0: one point from the set but not the match.
		s = award(t, s, models.SideTeam1, 3, mf, gf)
		So(s.IsSetPoint, ShouldBeTrue)
		So(s.IsMatchPoint, ShouldBeFalse)

		// Take the set, then run the second set to the same spot.
		s = award(t, s, models.SideTeam1, 1, mf, gf)
		for i := 0; i < 5; i++ {
			s = winGame(t, s, models.SideTeam1, mf, gf)
		}
		s = award(t, s, models.SideTeam1, 3, mf, gf)
		So(s.IsSetPoint, ShouldBeTrue)
		So(s.IsMatchPoint, ShouldBeTrue)

		// From deuce nobody is a point from the game.
		s = award(t, s, models.SideTeam2, 3, mf, gf)
		So(s.IsDeuce, ShouldBeTrue)
		So(s.IsSetPoint, ShouldBeFalse)
		So(s.IsMatchPoint, ShouldBeFalse)
	})

	Convey("AwardPoint never mutates its input", t, func() {
		s := scoring.InitializeScore(mf)
		s = award(t, s, models.SideTeam1, 2, mf, gf)
		before := s.Clone()
		_, err := scoring.AwardPoint(s, models.SideTeam2, mf, gf)
		So(err, ShouldBeNil)
		So(s.Team2Points, ShouldEqual, before.Team2Points)
		So(len(s.SetScores), ShouldEqual, len(before.SetScores))
	})
}

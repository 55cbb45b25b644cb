package brackets

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtside/tennis-tournament-system/models"
)

func TestRoundRobinTopology(t *testing.T) {
	Convey("Given a four entry round robin", t, func() {
		bracket := generate(t, models.FormatRoundRobin, 4)

		Convey("it schedules every pair exactly once", func() {
			So(len(bracket.Nodes), ShouldEqual, 6)

			pairs := map[string]int{}
			for i := range bracket.Nodes {
				node := &bracket.Nodes[i]
				a, b := *node.Team1ID, *node.Team2ID
				if a > b {
					a, b = b, a
				}
				pairs[fmt.Sprintf("%d-%d", a, b)]++
			}
			So(len(pairs), ShouldEqual, 6)
			for _, count := range pairs {
				So(count, ShouldEqual, 1)
			}
		})

		Convey("all nodes are terminal, no advancement exists", func() {
			for i := range bracket.Nodes {
				node := &bracket.Nodes[i]
				So(node.Next, ShouldBeNil)
				So(node.LoserTo, ShouldBeNil)
				So(node.Key.Round, ShouldEqual, 1)
			}
		})
	})
}

func completedMatch(id, team1, team2, winner int, sets []models.SetScore) *models.Match {
	t1, t2, w := team1, team2, winner
	score := &models.TennisScore{SetScores: sets}
	for _, set := range sets {
		if set.Team1Games > set.Team2Games {
			score.Team1Sets++
		} else {
			score.Team2Sets++
		}
	}
	return &models.Match{
		ID:           id,
		Team1ID:      &t1,
		Team2ID:      &t2,
		WinnerTeamID: &w,
		Status:       models.MatchStatusCompleted,
		Score:        score,
	}
}

func TestStandings(t *testing.T) {
	Convey("Given a three entry round robin with all matches completed", t, func() {
		teams := []*models.Team{
			{ID: 1, Name: "Alpha"},
			{ID: 2, Name: "Beta"},
			{ID: 3, Name: "Gamma"},
		}
		straightSets := []models.SetScore{
			{SetNumber: 1, Team1Games: 6, Team2Games: 4, IsCompleted: true},
			{SetNumber: 2, Team1Games: 6, Team2Games: 3, IsCompleted: true},
		}
		matches := []*models.Match{
			completedMatch(1, 1, 2, 1, straightSets),
			completedMatch(2, 1, 3, 1, straightSets),
			completedMatch(3, 2, 3, 2, straightSets),
		}

		Convey("the table ranks by wins", func() {
			standings := ComputeStandings(teams, matches)
			So(len(standings), ShouldEqual, 3)
			So(standings[0].TeamID, ShouldEqual, 1)
			So(standings[0].Wins, ShouldEqual, 2)
			So(standings[0].Rank, ShouldEqual, 1)
			So(standings[1].TeamID, ShouldEqual, 2)
			So(standings[2].TeamID, ShouldEqual, 3)
			So(standings[2].Losses, ShouldEqual, 2)
		})

		Convey("set and game totals accumulate from both sides", func() {
			standings := ComputeStandings(teams, matches)
			So(standings[0].SetsWon, ShouldEqual, 4)
			So(standings[0].SetsLost, ShouldEqual, 0)
			So(standings[0].GamesWon, ShouldEqual, 24)
			So(standings[0].GamesLost, ShouldEqual, 14)
		})

		Convey("pending matches do not count", func() {
			pending := &models.Match{ID: 4, Status: models.MatchStatusInProgress}
			standings := ComputeStandings(teams, append(matches, pending))
			So(standings[0].Played, ShouldEqual, 2)
		})
	})

	Convey("Given equal win counts", t, func() {
		teams := []*models.Team{
			{ID: 1, Name: "Alpha"},
			{ID: 2, Name: "Beta"},
		}
		tightSets := []models.SetScore{
			{SetNumber: 1, Team1Games: 6, Team2Games: 4, IsCompleted: true},
			{SetNumber: 2, Team1Games: 4, Team2Games: 6, IsCompleted: true},
			{SetNumber: 3, Team1Games: 7, Team2Games: 5, IsCompleted: true},
		}
		wideSets := []models.SetScore{
			{SetNumber: 1, Team1Games: 6, Team2Games: 0, IsCompleted: true},
			{SetNumber: 2, Team1Games: 6, Team2Games: 1, IsCompleted: true},
		}

		Convey("set difference breaks the tie", func() {
			matches := []*models.Match{
				completedMatch(1, 1, 2, 1, tightSets),
				completedMatch(2, 2, 1, 2, wideSets),
			}
			standings := ComputeStandings(teams, matches)
			So(standings[0].Wins, ShouldEqual, 1)
			So(standings[1].Wins, ShouldEqual, 1)
			// Beta won in straight sets, Alpha dropped one.
			So(standings[0].TeamID, ShouldEqual, 2)
		})
	})
}

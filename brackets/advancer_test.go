package brackets

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtside/tennis-tournament-system/models"
)

func TestAdvance(t *testing.T) {
	Convey("Given a four entry single elimination", t, func() {
		bracket := generate(t, models.FormatSingleElimination, 4)
		semi1 := nodeKey(models.SegmentWinners, 1, 1)
		semi2 := nodeKey(models.SegmentWinners, 1, 2)
		final := nodeKey(models.SegmentWinners, 2, 1)

		Convey("a completed match writes the winner into the dependent slot", func() {
			result, err := Advance(bracket, semi1, 1, nil)
			So(err, ShouldBeNil)
			So(result.Updated, ShouldResemble, []models.NodeKey{semi1, final})
			So(result.Ready, ShouldBeEmpty)
			So(result.BracketComplete, ShouldBeFalse)
			So(*bracket.Node(final).Team1ID, ShouldEqual, 1)
			So(bracket.Node(final).Team2ID, ShouldBeNil)
		})

		Convey("the merge node goes ready once both feeders delivered", func() {
			_, err := Advance(bracket, semi1, 1, nil)
			So(err, ShouldBeNil)
			result, err := Advance(bracket, semi2, 3, nil)
			So(err, ShouldBeNil)
			So(result.Ready, ShouldResemble, []models.NodeKey{final})
			So(*bracket.Node(final).Team2ID, ShouldEqual, 3)
		})

		Convey("replaying the same completion is a no-op", func() {
			first, err := Advance(bracket, semi1, 1, nil)
			So(err, ShouldBeNil)
			So(first.Updated, ShouldNotBeEmpty)

			replay, err := Advance(bracket, semi1, 1, nil)
			So(err, ShouldBeNil)
			So(replay.Updated, ShouldBeEmpty)
			So(*bracket.Node(final).Team1ID, ShouldEqual, 1)
		})

		Convey("a conflicting winner for a decided node is fatal", func() {
			_, err := Advance(bracket, semi1, 1, nil)
			So(err, ShouldBeNil)

			_, err = Advance(bracket, semi1, 4, nil)
			So(err, ShouldWrap, ErrAdvancementConflict)
		})

		Convey("a winner that never played the node is rejected", func() {
			_, err := Advance(bracket, semi1, 99, nil)
			So(err, ShouldWrap, ErrWinnerNotInNode)
		})

		Convey("an unknown node is rejected", func() {
			_, err := Advance(bracket, nodeKey(models.SegmentWinners, 9, 9), 1, nil)
			So(err, ShouldWrap, ErrNodeNotFound)
		})

		Convey("completing the terminal node crowns the champion", func() {
			_, err := Advance(bracket, semi1, 1, nil)
			So(err, ShouldBeNil)
			_, err = Advance(bracket, semi2, 3, nil)
			So(err, ShouldBeNil)

			result, err := Advance(bracket, final, 3, nil)
			So(err, ShouldBeNil)
			So(result.BracketComplete, ShouldBeTrue)
			So(*result.ChampionTeamID, ShouldEqual, 3)
			So(result.RequiresReset, ShouldBeFalse)
		})
	})

	Convey("Given merge slots fed from both parities", t, func() {
		bracket := generate(t, models.FormatSingleElimination, 8)

		Convey("odd positions land in slot 1 and even in slot 2", func() {
			_, err := Advance(bracket, nodeKey(models.SegmentWinners, 1, 3), 2, nil)
			So(err, ShouldBeNil)
			_, err = Advance(bracket, nodeKey(models.SegmentWinners, 1, 4), 3, nil)
			So(err, ShouldBeNil)

			merge := bracket.Node(nodeKey(models.SegmentWinners, 2, 2))
			So(*merge.Team1ID, ShouldEqual, 2)
			So(*merge.Team2ID, ShouldEqual, 3)
		})
	})

	Convey("Given a bracket with byes ahead", t, func() {
		bracket := generate(t, models.FormatSingleElimination, 5)

		Convey("a winner meeting a bye occupant goes ready immediately", func() {
			// Round 1 position 2 is the only played match; its winner
			// joins the bye occupant already waiting in the semifinal.
			result, err := Advance(bracket, nodeKey(models.SegmentWinners, 1, 2), 5, nil)
			So(err, ShouldBeNil)
			So(result.Ready, ShouldResemble, []models.NodeKey{nodeKey(models.SegmentWinners, 2, 1)})

			semi := bracket.Node(nodeKey(models.SegmentWinners, 2, 1))
			So(*semi.Team1ID, ShouldEqual, 1)
			So(*semi.Team2ID, ShouldEqual, 5)
		})
	})
}

package brackets

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtside/tennis-tournament-system/models"
)

func countPlayable(bracket *models.Bracket) int {
	playable := 0
	for i := range bracket.Nodes {
		if !bracket.Nodes[i].IsBye {
			playable++
		}
	}
	return playable
}

func TestSingleEliminationTopology(t *testing.T) {
	Convey("Given a four entry single elimination", t, func() {
		bracket := generate(t, models.FormatSingleElimination, 4)

		Convey("it has two rounds and N-1 matches", func() {
			So(bracket.TotalRounds, ShouldEqual, 2)
			So(len(bracket.Nodes), ShouldEqual, 3)
			So(countPlayable(bracket), ShouldEqual, 3)
		})

		Convey("round 1 pairs seed 1 with seed 4 and seed 2 with seed 3", func() {
			p1 := bracket.Node(nodeKey(models.SegmentWinners, 1, 1))
			p2 := bracket.Node(nodeKey(models.SegmentWinners, 1, 2))
			So(*p1.Team1ID, ShouldEqual, 1)
			So(*p1.Team2ID, ShouldEqual, 4)
			So(*p2.Team1ID, ShouldEqual, 2)
			So(*p2.Team2ID, ShouldEqual, 3)
		})

		Convey("both semifinals feed the final, odd position to slot 1", func() {
			p1 := bracket.Node(nodeKey(models.SegmentWinners, 1, 1))
			p2 := bracket.Node(nodeKey(models.SegmentWinners, 1, 2))
			final := nodeKey(models.SegmentWinners, 2, 1)
			So(p1.Next.Key, ShouldResemble, final)
			So(p1.Next.Slot, ShouldEqual, 1)
			So(p2.Next.Key, ShouldResemble, final)
			So(p2.Next.Slot, ShouldEqual, 2)
		})

		Convey("the final is terminal and knows its feeders", func() {
			final := bracket.Node(nodeKey(models.SegmentWinners, 2, 1))
			So(final.Next, ShouldBeNil)
			So(final.PreviousNodes, ShouldResemble, []models.NodeKey{
				nodeKey(models.SegmentWinners, 1, 1),
				nodeKey(models.SegmentWinners, 1, 2),
			})
		})
	})

	Convey("Given a five entry single elimination", t, func() {
		bracket := generate(t, models.FormatSingleElimination, 5)

		Convey("it rounds up to three rounds with three byes", func() {
			So(bracket.TotalRounds, ShouldEqual, 3)
			So(len(bracket.Nodes), ShouldEqual, 7)
			So(countPlayable(bracket), ShouldEqual, 4)
		})

		Convey("top seeds take the byes", func() {
			for p, want := range map[int]int{1: 1, 3: 2, 4: 3} {
				node := bracket.Node(nodeKey(models.SegmentWinners, 1, p))
				So(node.IsBye, ShouldBeTrue)
				So(*node.Team1ID, ShouldEqual, want)
				So(node.Team2ID, ShouldBeNil)
			}
			played := bracket.Node(nodeKey(models.SegmentWinners, 1, 2))
			So(played.IsBye, ShouldBeFalse)
			So(*played.Team1ID, ShouldEqual, 4)
			So(*played.Team2ID, ShouldEqual, 5)
		})

		Convey("bye occupants advance through the regular path at generation", func() {
			semi1 := bracket.Node(nodeKey(models.SegmentWinners, 2, 1))
			So(*semi1.Team1ID, ShouldEqual, 1)
			So(semi1.Team2ID, ShouldBeNil)

			semi2 := bracket.Node(nodeKey(models.SegmentWinners, 2, 2))
			So(*semi2.Team1ID, ShouldEqual, 2)
			So(*semi2.Team2ID, ShouldEqual, 3)
		})
	})

	Convey("Given an eight entry single elimination", t, func() {
		bracket := generate(t, models.FormatSingleElimination, 8)

		Convey("seeds 1 and 2 sit in opposite halves and can only meet in the final", func() {
			var seed1Node, seed2Node *models.BracketNode
			for i := range bracket.Nodes {
				node := &bracket.Nodes[i]
				if node.Key.Round != 1 {
					continue
				}
				if node.Team1ID != nil && *node.Team1ID == 1 {
					seed1Node = node
				}
				if node.Team1ID != nil && *node.Team1ID == 2 {
					seed2Node = node
				}
			}
			So(seed1Node, ShouldNotBeNil)
			So(seed2Node, ShouldNotBeNil)
			So(seed1Node.Next.Key.Position, ShouldNotEqual, seed2Node.Next.Key.Position)

			merge1 := bracket.Node(seed1Node.Next.Key)
			merge2 := bracket.Node(seed2Node.Next.Key)
			So(merge1.Next.Key, ShouldResemble, nodeKey(models.SegmentWinners, 3, 1))
			So(merge2.Next.Key, ShouldResemble, nodeKey(models.SegmentWinners, 3, 1))
		})
	})
}

package brackets

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtside/tennis-tournament-system/models"
)

func TestDoubleEliminationTopology(t *testing.T) {
	Convey("Given a four entry double elimination", t, func() {
		bracket := generate(t, models.FormatDoubleElimination, 4)

		Convey("it has 2N-2 nodes across winners, losers and grand final", func() {
			So(len(bracket.Nodes), ShouldEqual, 6)
			counts := map[models.Segment]int{}
			for i := range bracket.Nodes {
				counts[bracket.Nodes[i].Key.Segment]++
			}
			So(counts[models.SegmentWinners], ShouldEqual, 3)
			So(counts[models.SegmentLosers], ShouldEqual, 2)
			So(counts[models.SegmentGrandFinal], ShouldEqual, 1)
		})

		Convey("round 1 losers pair up in the losers bracket", func() {
			w1 := bracket.Node(nodeKey(models.SegmentWinners, 1, 1))
			w2 := bracket.Node(nodeKey(models.SegmentWinners, 1, 2))
			So(w1.LoserTo, ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentLosers, 1, 1), Slot: 1})
			So(w2.LoserTo, ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentLosers, 1, 1), Slot: 2})
		})

		Convey("the winners final loser drops into slot 1 of the last losers round", func() {
			wf := bracket.Node(nodeKey(models.SegmentWinners, 2, 1))
			So(wf.LoserTo, ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentLosers, 2, 1), Slot: 1})
			So(wf.Next, ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentGrandFinal, 1, 1), Slot: 1})
		})

		Convey("the losers final feeds slot 2 of the grand final", func() {
			lf := bracket.Node(nodeKey(models.SegmentLosers, 2, 1))
			So(lf.Next, ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentGrandFinal, 1, 1), Slot: 2})
			gf := bracket.Node(nodeKey(models.SegmentGrandFinal, 1, 1))
			So(gf.Next, ShouldBeNil)
		})
	})

	Convey("Given an eight entry double elimination", t, func() {
		bracket := generate(t, models.FormatDoubleElimination, 8)

		Convey("the losers bracket has 2*(R-1) rounds with halving sizes", func() {
			sizes := map[int]int{}
			for i := range bracket.Nodes {
				node := &bracket.Nodes[i]
				if node.Key.Segment == models.SegmentLosers {
					sizes[node.Key.Round]++
				}
			}
			So(sizes, ShouldResemble, map[int]int{1: 2, 2: 2, 3: 1, 4: 1})
		})

		Convey("even winners rounds drop with reversed positions", func() {
			So(bracket.Node(nodeKey(models.SegmentWinners, 2, 1)).LoserTo,
				ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentLosers, 2, 2), Slot: 1})
			So(bracket.Node(nodeKey(models.SegmentWinners, 2, 2)).LoserTo,
				ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentLosers, 2, 1), Slot: 1})
			So(bracket.Node(nodeKey(models.SegmentWinners, 3, 1)).LoserTo,
				ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentLosers, 4, 1), Slot: 1})
		})

		Convey("every loser drop target exists", func() {
			for i := range bracket.Nodes {
				node := &bracket.Nodes[i]
				if node.Key.Segment != models.SegmentWinners {
					continue
				}
				So(node.LoserTo, ShouldNotBeNil)
				So(bracket.Node(node.LoserTo.Key), ShouldNotBeNil)
			}
		})
	})

	Convey("Given a five entry double elimination", t, func() {
		bracket := generate(t, models.FormatDoubleElimination, 5)

		Convey("losers nodes starved by winners byes are flagged short", func() {
			// Winners round 1 byes at positions 1, 3 and 4 produce no
			// losers, so losers(1,1) waits on a single feeder and
			// losers(1,2) never plays at all.
			short := bracket.Node(nodeKey(models.SegmentLosers, 1, 1))
			So(short.IsBye, ShouldBeTrue)
			dead := bracket.Node(nodeKey(models.SegmentLosers, 1, 2))
			So(dead.IsBye, ShouldBeTrue)
			So(bracket.Node(dead.Next.Key).IsBye, ShouldBeTrue)
		})
	})
}

func TestDoubleEliminationPlaythrough(t *testing.T) {
	Convey("Given a four entry double elimination played to the end", t, func() {
		bracket := generate(t, models.FormatDoubleElimination, 4)

		advance := func(key models.NodeKey, winner int, loser int) *AdvanceResult {
			l := loser
			result, err := Advance(bracket, key, winner, &l)
			So(err, ShouldBeNil)
			return result
		}

		// Winners round 1: 1 beats 4, 3 beats 2.
		advance(nodeKey(models.SegmentWinners, 1, 1), 1, 4)
		result := advance(nodeKey(models.SegmentWinners, 1, 2), 3, 2)

		Convey("both losers land in the losers bracket and the node goes ready", func() {
			l1 := bracket.Node(nodeKey(models.SegmentLosers, 1, 1))
			So(*l1.Team1ID, ShouldEqual, 4)
			So(*l1.Team2ID, ShouldEqual, 2)
			So(result.Ready, ShouldContain, nodeKey(models.SegmentLosers, 1, 1))
			So(result.Ready, ShouldContain, nodeKey(models.SegmentWinners, 2, 1))
		})

		Convey("when the losers champion takes the grand final a reset is owed", func() {
			advance(nodeKey(models.SegmentLosers, 1, 1), 2, 4)
			advance(nodeKey(models.SegmentWinners, 2, 1), 1, 3)
			result := advance(nodeKey(models.SegmentLosers, 2, 1), 2, 3)
			So(result.Ready, ShouldContain, nodeKey(models.SegmentGrandFinal, 1, 1))

			gf := bracket.Node(nodeKey(models.SegmentGrandFinal, 1, 1))
			So(*gf.Team1ID, ShouldEqual, 1)
			So(*gf.Team2ID, ShouldEqual, 2)

			final, err := Advance(bracket, gf.Key, 2, nil)
			So(err, ShouldBeNil)
			So(final.BracketComplete, ShouldBeTrue)
			So(*final.ChampionTeamID, ShouldEqual, 2)
			So(final.RequiresReset, ShouldBeTrue)
			So(bracket.RequiresReset, ShouldBeTrue)
		})

		Convey("when the winners champion takes the grand final no reset is owed", func() {
			advance(nodeKey(models.SegmentLosers, 1, 1), 2, 4)
			advance(nodeKey(models.SegmentWinners, 2, 1), 1, 3)
			advance(nodeKey(models.SegmentLosers, 2, 1), 2, 3)

			final, err := Advance(bracket, nodeKey(models.SegmentGrandFinal, 1, 1), 1, nil)
			So(err, ShouldBeNil)
			So(final.BracketComplete, ShouldBeTrue)
			So(*final.ChampionTeamID, ShouldEqual, 1)
			So(final.RequiresReset, ShouldBeFalse)
		})
	})

	Convey("Given a two entry double elimination", t, func() {
		bracket := generate(t, models.FormatDoubleElimination, 2)

		Convey("the sole winners match rematches its loser in the grand final", func() {
			node := bracket.Node(nodeKey(models.SegmentWinners, 1, 1))
			So(node.LoserTo, ShouldResemble, &models.SlotRef{Key: nodeKey(models.SegmentGrandFinal, 1, 1), Slot: 2})

			loser := 2
			result, err := Advance(bracket, node.Key, 1, &loser)
			So(err, ShouldBeNil)
			So(result.Ready, ShouldContain, nodeKey(models.SegmentGrandFinal, 1, 1))

			gf := bracket.Node(nodeKey(models.SegmentGrandFinal, 1, 1))
			So(*gf.Team1ID, ShouldEqual, 1)
			So(*gf.Team2ID, ShouldEqual, 2)
		})
	})
}

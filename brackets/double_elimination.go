package brackets

import (
	"context"
	"fmt"
	"math"

	"github.com/courtside/tennis-tournament-system/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) Name() string {
	return "DoubleElimination"
}

// Generate builds a winners bracket identical to single elimination plus a
// losers bracket of 2*(R-1) rounds, where odd losers rounds pair up freshly
// dropped teams or play internal matches and even rounds absorb the losers
// falling from winners round r at losers round 2*(r-1). Every winners node
// stores its loser drop target at generation time; advancement only follows
// the stored pointers and never re-derives the offset.
func (g *DoubleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) (*models.Bracket, error) {
	teams := bySeed(params.Teams)
	n := len(teams)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}

	totalRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(totalRounds)
	losersRounds := 2 * (totalRounds - 1)

	bracket := &models.Bracket{
		TournamentID: params.Tournament.ID,
		Format:       models.FormatDoubleElimination,
		TotalRounds:  totalRounds,
	}

	grandFinal := models.SlotRef{
		Key:  models.NodeKey{Segment: models.SegmentGrandFinal, Round: 1, Position: 1},
		Slot: 1,
	}
	buildEliminationNodes(bracket, models.SegmentWinners, totalRounds, &grandFinal)
	buildLosersNodes(bracket, totalRounds, losersRounds)
	bracket.AddNode(models.BracketNode{Key: grandFinal.Key})

	linkLoserDrops(bracket, totalRounds, losersRounds)
	seedRoundOne(bracket, models.SegmentWinners, teams, bracketSize)
	markShortLosersNodes(bracket)

	if err := propagateByes(bracket, models.SegmentWinners); err != nil {
		return nil, fmt.Errorf("double elimination bye propagation: %w", err)
	}

	return bracket, nil
}

// losersRoundSize returns the node count of losers round l for a winners
// bracket of R rounds: 2^(R-1-ceil(l/2)).
func losersRoundSize(totalRounds, l int) int {
	return 1 << uint(totalRounds-1-(l+1)/2)
}

func buildLosersNodes(bracket *models.Bracket, totalRounds, losersRounds int) {
	for l := 1; l <= losersRounds; l++ {
		size := losersRoundSize(totalRounds, l)
		for p := 1; p <= size; p++ {
			node := models.BracketNode{
				Key: models.NodeKey{Segment: models.SegmentLosers, Round: l, Position: p},
			}
			switch {
			case l == losersRounds:
				node.Next = &models.SlotRef{
					Key:  models.NodeKey{Segment: models.SegmentGrandFinal, Round: 1, Position: 1},
					Slot: 2,
				}
			case l%2 == 1:
				// Internal round: the winner meets the next fresh
				// loser in the following absorb round.
				node.Next = &models.SlotRef{
					Key:  models.NodeKey{Segment: models.SegmentLosers, Round: l + 1, Position: p},
					Slot: 2,
				}
			default:
				node.Next = &models.SlotRef{
					Key:  models.NodeKey{Segment: models.SegmentLosers, Round: l + 1, Position: (p + 1) / 2},
					Slot: slotForPosition(p),
				}
			}
			bracket.AddNode(node)
		}
	}
}

// linkLoserDrops wires every winners node to its losers-bracket landing slot.
// Round-1 losers pair up in losers round 1; the loser of winners round r>=2
// takes slot 1 of losers round 2*(r-1), with the position order reversed on
// even winners rounds so rematches are pushed as late as possible.
func linkLoserDrops(bracket *models.Bracket, totalRounds, losersRounds int) {
	for i := range bracket.Nodes {
		node := &bracket.Nodes[i]
		if node.Key.Segment != models.SegmentWinners {
			continue
		}
		r, p := node.Key.Round, node.Key.Position
		if losersRounds == 0 {
			// Two entries: the winners final loser gets the grand
			// final rematch directly.
			node.LoserTo = &models.SlotRef{
				Key:  models.NodeKey{Segment: models.SegmentGrandFinal, Round: 1, Position: 1},
				Slot: 2,
			}
			continue
		}
		if r == 1 {
			node.LoserTo = &models.SlotRef{
				Key:  models.NodeKey{Segment: models.SegmentLosers, Round: 1, Position: (p + 1) / 2},
				Slot: slotForPosition(p),
			}
			continue
		}
		targetRound := 2 * (r - 1)
		targetPos := p
		if r%2 == 0 {
			targetPos = losersRoundSize(totalRounds, targetRound) - p + 1
		}
		node.LoserTo = &models.SlotRef{
			Key:  models.NodeKey{Segment: models.SegmentLosers, Round: targetRound, Position: targetPos},
			Slot: 1,
		}
	}
}

// markShortLosersNodes flags losers round-1 nodes that can never fill both
// slots because winners-bracket byes produce no losers. A node with one bye
// feeder is advanced by the advancer the moment its real loser arrives; a
// node with two bye feeders never plays at all, which turns its successor
// into the short node instead.
func markShortLosersNodes(bracket *models.Bracket) {
	byeFeeders := make(map[models.NodeKey]int)
	for i := range bracket.Nodes {
		node := &bracket.Nodes[i]
		if node.Key.Segment != models.SegmentWinners || node.Key.Round != 1 || !node.IsBye {
			continue
		}
		if node.LoserTo != nil {
			byeFeeders[node.LoserTo.Key]++
		}
	}
	for key, count := range byeFeeders {
		target := bracket.Node(key)
		if target == nil {
			continue
		}
		target.IsBye = true
		if count >= 2 && target.Next != nil {
			if successor := bracket.Node(target.Next.Key); successor != nil {
				successor.IsBye = true
			}
		}
	}
}

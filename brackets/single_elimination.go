package brackets

import (
	"context"
	"fmt"
	"math"

	"github.com/courtside/tennis-tournament-system/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// Generate builds ceil(log2(n)) knockout rounds. Round r holds
// 2^(totalRounds-r) nodes; node (r,p) feeds (r+1, ceil(p/2)), slot 1 when p
// is odd and slot 2 when p is even. Entries that draw no round-1 opponent
// get a bye node and are advanced through the regular advancement path.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) (*models.Bracket, error) {
	teams := bySeed(params.Teams)
	n := len(teams)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}

	totalRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(totalRounds)

	bracket := &models.Bracket{
		TournamentID: params.Tournament.ID,
		Format:       models.FormatSingleElimination,
		TotalRounds:  totalRounds,
	}

	buildEliminationNodes(bracket, models.SegmentWinners, totalRounds, nil)
	seedRoundOne(bracket, models.SegmentWinners, teams, bracketSize)

	if err := propagateByes(bracket, models.SegmentWinners); err != nil {
		return nil, fmt.Errorf("single elimination bye propagation: %w", err)
	}

	return bracket, nil
}

// buildEliminationNodes creates the node arena of a knockout segment. When
// next is non-nil the terminal node of the segment points there instead of
// being terminal.
func buildEliminationNodes(bracket *models.Bracket, segment models.Segment, rounds int, next *models.SlotRef) {
	for r := 1; r <= rounds; r++ {
		nodesInRound := 1 << uint(rounds-r)
		for p := 1; p <= nodesInRound; p++ {
			node := models.BracketNode{
				Key: models.NodeKey{Segment: segment, Round: r, Position: p},
			}
			if r < rounds {
				node.Next = &models.SlotRef{
					Key:  models.NodeKey{Segment: segment, Round: r + 1, Position: (p + 1) / 2},
					Slot: slotForPosition(p),
				}
			} else if next != nil {
				node.Next = next
			}
			if r > 1 {
				node.PreviousNodes = []models.NodeKey{
					{Segment: segment, Round: r - 1, Position: 2*p - 1},
					{Segment: segment, Round: r - 1, Position: 2 * p},
				}
			}
			bracket.AddNode(node)
		}
	}
}

// seedRoundOne places the entries into round 1 following the mirrored seed
// order: seed 1 meets the lowest seed, seed 2 sits in the opposite half.
// Slots whose seed number exceeds the entry count stay empty and turn the
// node into a bye.
func seedRoundOne(bracket *models.Bracket, segment models.Segment, teams []*models.Team, bracketSize int) {
	order := seedSlots(bracketSize)
	for p := 1; p <= bracketSize/2; p++ {
		node := bracket.Node(models.NodeKey{Segment: segment, Round: 1, Position: p})
		if s := order[2*p-2]; s <= len(teams) {
			id := teams[s-1].ID
			node.Team1ID = &id
		}
		if s := order[2*p-1]; s <= len(teams) {
			id := teams[s-1].ID
			node.Team2ID = &id
		}
		if (node.Team1ID == nil) != (node.Team2ID == nil) {
			node.IsBye = true
		}
	}
}

// propagateByes advances every round-1 bye through Advance so the sole
// occupant lands in the next node exactly like a played-match winner would.
func propagateByes(bracket *models.Bracket, segment models.Segment) error {
	for i := range bracket.Nodes {
		node := &bracket.Nodes[i]
		if node.Key.Segment != segment || node.Key.Round != 1 || !node.IsBye {
			continue
		}
		occupant := node.Team1ID
		if occupant == nil {
			occupant = node.Team2ID
		}
		if occupant == nil {
			return fmt.Errorf("bye node %s has no occupant", node.Key)
		}
		if _, err := Advance(bracket, node.Key, *occupant, nil); err != nil {
			return err
		}
	}
	return nil
}

func slotForPosition(p int) int {
	if p%2 == 1 {
		return 1
	}
	return 2
}

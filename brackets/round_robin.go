package brackets

import (
	"context"

	"github.com/courtside/tennis-tournament-system/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate creates one match per unordered pair of entries, n*(n-1)/2 in
// total, all flagged round 1. Nodes are terminal: round robin has no
// advancement, the table is a standings projection over completed matches.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) (*models.Bracket, error) {
	teams := bySeed(params.Teams)
	n := len(teams)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}

	bracket := &models.Bracket{
		TournamentID: params.Tournament.ID,
		Format:       models.FormatRoundRobin,
		TotalRounds:  1,
	}

	position := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			position++
			t1, t2 := teams[i].ID, teams[j].ID
			bracket.AddNode(models.BracketNode{
				Key:     models.NodeKey{Segment: models.SegmentWinners, Round: 1, Position: position},
				Team1ID: &t1,
				Team2ID: &t2,
			})
		}
	}

	return bracket, nil
}

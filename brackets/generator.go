package brackets

import (
	"context"
	"errors"
	"sort"

	"github.com/courtside/tennis-tournament-system/models"
)

var (
	ErrNotEnoughTeams    = errors.New("not enough teams to generate a bracket (minimum 2)")
	ErrUnsupportedFormat = errors.New("unsupported bracket format")
)

type GenerateParams struct {
	Tournament *models.Tournament
	Teams      []*models.Team
}

// Generator builds the round/position topology for one bracket format and
// seeds the entries into round 1.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) (*models.Bracket, error)

	Name() string
}

// NewGenerator dispatches on the format tag.
func NewGenerator(format models.BracketFormat) (Generator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// bySeed orders entries by their seed, unseeded entries after seeded ones in
// registration order.
func bySeed(teams []*models.Team) []*models.Team {
	sorted := make([]*models.Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].Seed, sorted[j].Seed
		switch {
		case si != nil && sj != nil:
			return *si < *sj
		case si != nil:
			return true
		default:
			return false
		}
	})
	return sorted
}

// seedSlots returns the classic bracket placement: slot k of round 1 holds
// seed seedSlots[k]. Built by repeated mirroring so that seeds 1 and 2 land
// in opposite halves and cannot meet before the final.
func seedSlots(bracketSize int) []int {
	order := []int{1}
	for len(order) < bracketSize {
		mirror := 2*len(order) + 1
		next := make([]int, 0, 2*len(order))
		for _, s := range order {
			next = append(next, s, mirror-s)
		}
		order = next
	}
	return order
}

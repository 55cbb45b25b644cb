package brackets

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtside/tennis-tournament-system/models"
)

func makeTeams(n int) []*models.Team {
	teams := make([]*models.Team, n)
	for i := 0; i < n; i++ {
		seed := i + 1
		teams[i] = &models.Team{
			ID:   i + 1,
			Name: fmt.Sprintf("Team %d", i+1),
			Seed: &seed,
		}
	}
	return teams
}

func testTournament() *models.Tournament {
	return &models.Tournament{ID: 77}
}

func generate(t *testing.T, format models.BracketFormat, n int) *models.Bracket {
	t.Helper()
	gen, err := NewGenerator(format)
	if err != nil {
		t.Fatalf("NewGenerator(%s): %v", format, err)
	}
	bracket, err := gen.Generate(context.Background(), GenerateParams{
		Tournament: testTournament(),
		Teams:      makeTeams(n),
	})
	if err != nil {
		t.Fatalf("Generate(%s, %d teams): %v", format, n, err)
	}
	return bracket
}

func nodeKey(segment models.Segment, round, position int) models.NodeKey {
	return models.NodeKey{Segment: segment, Round: round, Position: position}
}

func TestGeneratorDispatch(t *testing.T) {
	Convey("Given the generator factory", t, func() {
		Convey("each format resolves to its generator", func() {
			for format, name := range map[models.BracketFormat]string{
				models.FormatSingleElimination: "SingleElimination",
				models.FormatDoubleElimination: "DoubleElimination",
				models.FormatRoundRobin:        "RoundRobin",
			} {
				gen, err := NewGenerator(format)
				So(err, ShouldBeNil)
				So(gen.Name(), ShouldEqual, name)
			}
		})

		Convey("an unknown format is rejected", func() {
			_, err := NewGenerator(models.BracketFormat("swiss"))
			So(err, ShouldEqual, ErrUnsupportedFormat)
		})

		Convey("fewer than two teams is rejected for every format", func() {
			for _, format := range []models.BracketFormat{
				models.FormatSingleElimination,
				models.FormatDoubleElimination,
				models.FormatRoundRobin,
			} {
				gen, _ := NewGenerator(format)
				_, err := gen.Generate(context.Background(), GenerateParams{
					Tournament: testTournament(),
					Teams:      makeTeams(1),
				})
				So(err, ShouldEqual, ErrNotEnoughTeams)
			}
		})
	})
}

func TestSeedOrdering(t *testing.T) {
	Convey("Given entries with mixed seeding", t, func() {
		s3, s1 := 3, 1
		teams := []*models.Team{
			{ID: 10, Name: "unseeded early"},
			{ID: 11, Name: "third", Seed: &s3},
			{ID: 12, Name: "top", Seed: &s1},
			{ID: 13, Name: "unseeded late"},
		}

		Convey("seeded entries come first, unseeded keep registration order", func() {
			sorted := bySeed(teams)
			So(sorted[0].ID, ShouldEqual, 12)
			So(sorted[1].ID, ShouldEqual, 11)
			So(sorted[2].ID, ShouldEqual, 10)
			So(sorted[3].ID, ShouldEqual, 13)
		})

		Convey("the input slice is left untouched", func() {
			bySeed(teams)
			So(teams[0].ID, ShouldEqual, 10)
		})
	})

	Convey("Given the mirrored placement order", t, func() {
		Convey("a four slot bracket pairs 1v4 and 2v3", func() {
			So(seedSlots(4), ShouldResemble, []int{1, 4, 2, 3})
		})

		Convey("an eight slot bracket keeps seeds 1 and 2 in opposite halves", func() {
			order := seedSlots(8)
			So(order, ShouldResemble, []int{1, 8, 4, 5, 2, 7, 3, 6})
		})
	})
}

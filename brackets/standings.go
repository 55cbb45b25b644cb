package brackets

import (
	"sort"

	"github.com/courtside/tennis-tournament-system/models"
)

// ComputeStandings projects the round-robin table from completed matches.
// The table is recomputed from authoritative match state on every read and
// never persisted, so it cannot drift.
func ComputeStandings(teams []*models.Team, matches []*models.Match) []models.Standing {
	rows := make(map[int]*models.Standing, len(teams))
	order := make([]int, 0, len(teams))
	for _, team := range teams {
		rows[team.ID] = &models.Standing{TeamID: team.ID, TeamName: team.Name}
		order = append(order, team.ID)
	}

	for _, match := range matches {
		if match.Status != models.MatchStatusCompleted || match.WinnerTeamID == nil {
			continue
		}
		if match.Team1ID == nil || match.Team2ID == nil {
			continue
		}
		row1, ok1 := rows[*match.Team1ID]
		row2, ok2 := rows[*match.Team2ID]
		if !ok1 || !ok2 {
			continue
		}

		row1.Played++
		row2.Played++
		if *match.WinnerTeamID == *match.Team1ID {
			row1.Wins++
			row2.Losses++
		} else {
			row2.Wins++
			row1.Losses++
		}

		if match.Score != nil {
			row1.SetsWon += match.Score.Team1Sets
			row1.SetsLost += match.Score.Team2Sets
			row2.SetsWon += match.Score.Team2Sets
			row2.SetsLost += match.Score.Team1Sets
			for _, set := range match.Score.SetScores {
				row1.GamesWon += set.Team1Games
				row1.GamesLost += set.Team2Games
				row2.GamesWon += set.Team2Games
				row2.GamesLost += set.Team1Games
			}
		}
	}

	standings := make([]models.Standing, 0, len(order))
	for _, id := range order {
		standings = append(standings, *rows[id])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if d1, d2 := a.SetsWon-a.SetsLost, b.SetsWon-b.SetsLost; d1 != d2 {
			return d1 > d2
		}
		if d1, d2 := a.GamesWon-a.GamesLost, b.GamesWon-b.GamesLost; d1 != d2 {
			return d1 > d2
		}
		return a.TeamName < b.TeamName
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

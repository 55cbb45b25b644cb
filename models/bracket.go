package models

import "fmt"

// BracketFormat selects the tournament topology.
type BracketFormat string

const (
	FormatSingleElimination BracketFormat = "single_elimination"
	FormatDoubleElimination BracketFormat = "double_elimination"
	FormatRoundRobin        BracketFormat = "round_robin"
)

// Segment separates the node keyspaces of a double elimination bracket.
// Single elimination and round robin use only SegmentWinners.
type Segment string

const (
	SegmentWinners    Segment = "winners"
	SegmentLosers     Segment = "losers"
	SegmentGrandFinal Segment = "grand_final"
)

// NodeKey addresses a bracket node. Nodes are stored in a flat indexed arena
// and all links are keys, never object pointers, so the round/position graph
// stays cycle-free.
type NodeKey struct {
	Segment  Segment `json:"segment"`
	Round    int     `json:"round"`
	Position int     `json:"position"`
}

func (k NodeKey) String() string {
	return fmt.Sprintf("%s:R%dP%d", k.Segment, k.Round, k.Position)
}

// SlotRef points at one team slot (1 or 2) of a node.
type SlotRef struct {
	Key  NodeKey `json:"key"`
	Slot int     `json:"slot"`
}

// BracketNode is one merge point of the bracket graph. Next is nil only for
// terminal nodes; LoserTo is set at generation time for winners-bracket nodes
// of a double elimination and is never re-derived during advancement.
type BracketNode struct {
	Key           NodeKey   `json:"key"`
	Team1ID       *int      `json:"team1_id,omitempty"`
	Team2ID       *int      `json:"team2_id,omitempty"`
	MatchID       *int      `json:"match_id,omitempty"`
	Next          *SlotRef  `json:"next,omitempty"`
	LoserTo       *SlotRef  `json:"loser_to,omitempty"`
	PreviousNodes []NodeKey `json:"previous_nodes,omitempty"`
	IsBye         bool      `json:"is_bye"`
	WinnerTeamID  *int      `json:"winner_team_id,omitempty"`
}

// Bracket is the aggregate topology of one tournament.
type Bracket struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	Format       BracketFormat `json:"format" db:"format"`
	TotalRounds  int           `json:"total_rounds" db:"total_rounds"`
	// RequiresReset is set when the losers-side champion wins the first
	// grand final of a double elimination.
	RequiresReset bool          `json:"requires_reset" db:"requires_reset"`
	Nodes         []BracketNode `json:"nodes" db:"-"`

	index map[NodeKey]int
}

// Node resolves a key against the arena index, building the index lazily
// after the bracket is loaded from storage.
func (b *Bracket) Node(key NodeKey) *BracketNode {
	if b.index == nil {
		b.index = make(map[NodeKey]int, len(b.Nodes))
		for i := range b.Nodes {
			b.index[b.Nodes[i].Key] = i
		}
	}
	i, ok := b.index[key]
	if !ok {
		return nil
	}
	return &b.Nodes[i]
}

// AddNode appends a node and indexes it.
func (b *Bracket) AddNode(node BracketNode) {
	if b.index == nil {
		b.index = make(map[NodeKey]int)
	}
	b.index[node.Key] = len(b.Nodes)
	b.Nodes = append(b.Nodes, node)
}

// Standing is the round-robin table row. It is a projection recomputed from
// completed matches, never stored authoritatively.
type Standing struct {
	TeamID       int    `json:"team_id"`
	TeamName     string `json:"team_name,omitempty"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	SetsWon      int    `json:"sets_won"`
	SetsLost     int    `json:"sets_lost"`
	GamesWon     int    `json:"games_won"`
	GamesLost    int    `json:"games_lost"`
	Rank         int    `json:"rank"`
}

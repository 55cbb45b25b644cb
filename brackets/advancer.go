package brackets

import (
	"errors"
	"fmt"

	"github.com/courtside/tennis-tournament-system/models"
)

var (
	ErrNodeNotFound = errors.New("bracket node not found")
	// ErrAdvancementConflict guards against a different winner being written
	// into a slot that is already filled. Replays with the identical winner
	// are a no-op; a conflicting one is a fatal consistency fault.
	ErrAdvancementConflict = errors.New("conflicting winner for an already advanced bracket slot")
	ErrWinnerNotInNode     = errors.New("winner is not a participant of the bracket node")
)

// AdvanceResult reports every node touched by one advancement.
type AdvanceResult struct {
	// Updated lists the nodes whose team slots or winner changed.
	Updated []models.NodeKey
	// Ready lists nodes that now have both teams resolved and whose match
	// can move from pending to scheduled.
	Ready []models.NodeKey
	// BracketComplete is set when the completed node was terminal.
	BracketComplete bool
	ChampionTeamID  *int
	// RequiresReset records that the losers-side champion took the first
	// grand final of a double elimination, so a second final is owed.
	RequiresReset bool
}

func (r *AdvanceResult) merge(other *AdvanceResult) {
	r.Updated = append(r.Updated, other.Updated...)
	r.Ready = append(r.Ready, other.Ready...)
	if other.BracketComplete {
		r.BracketComplete = true
		r.ChampionTeamID = other.ChampionTeamID
	}
	if other.RequiresReset {
		r.RequiresReset = true
	}
}

// Advance consumes a completed match at key and writes the winner into the
// dependent slot, plus the loser into its losers-bracket slot when the node
// carries a drop pointer. Parity decides the merge slot: an odd position
// occupies slot 1 of the next node, an even one slot 2 (the slot is stored
// on the node at generation time). Calling Advance twice with the same
// winner leaves the bracket unchanged.
func Advance(bracket *models.Bracket, key models.NodeKey, winnerID int, loserID *int) (*AdvanceResult, error) {
	node := bracket.Node(key)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}

	if node.WinnerTeamID != nil {
		if *node.WinnerTeamID == winnerID {
			return &AdvanceResult{}, nil
		}
		return nil, fmt.Errorf("%w: node %s already won by team %d", ErrAdvancementConflict, key, *node.WinnerTeamID)
	}

	if node.Team1ID != nil && node.Team2ID != nil &&
		*node.Team1ID != winnerID && *node.Team2ID != winnerID {
		return nil, fmt.Errorf("%w: team %d at node %s", ErrWinnerNotInNode, winnerID, key)
	}

	w := winnerID
	node.WinnerTeamID = &w
	result := &AdvanceResult{Updated: []models.NodeKey{key}}

	if node.Next == nil {
		result.BracketComplete = true
		result.ChampionTeamID = &w
		if key.Segment == models.SegmentGrandFinal &&
			node.Team2ID != nil && *node.Team2ID == winnerID {
			result.RequiresReset = true
			bracket.RequiresReset = true
		}
		return result, nil
	}

	if err := writeSlot(bracket, result, *node.Next, winnerID); err != nil {
		return nil, err
	}

	if loserID != nil && node.LoserTo != nil {
		if err := writeSlot(bracket, result, *node.LoserTo, *loserID); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// writeSlot fills one team slot of a target node, cascading through short
// nodes: a node flagged as bye has a feeder that will never deliver, so the
// arriving team advances onward immediately.
func writeSlot(bracket *models.Bracket, result *AdvanceResult, ref models.SlotRef, teamID int) error {
	target := bracket.Node(ref.Key)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, ref.Key)
	}

	slot := &target.Team1ID
	if ref.Slot == 2 {
		slot = &target.Team2ID
	}
	if *slot != nil {
		if **slot == teamID {
			return nil
		}
		return fmt.Errorf("%w: slot %d of node %s already holds team %d", ErrAdvancementConflict, ref.Slot, ref.Key, **slot)
	}

	id := teamID
	*slot = &id
	result.Updated = append(result.Updated, ref.Key)

	if target.Team1ID != nil && target.Team2ID != nil {
		result.Ready = append(result.Ready, ref.Key)
		return nil
	}

	if target.IsBye && target.WinnerTeamID == nil {
		sub, err := Advance(bracket, ref.Key, teamID, nil)
		if err != nil {
			return err
		}
		result.merge(sub)
	}
	return nil
}

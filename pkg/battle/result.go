package battle

import (
	"encoding/json"
	"fmt"
)

// Reason explains why a game ended.
type Reason uint8

const (
	// AllTanksDead means at least one side lost every tank.
	AllTanksDead Reason = iota
	// MaxSteps means the step budget ran out.
	MaxSteps
	// ZeroShells means every remaining tank stayed out of ammo for the
	// configured number of rounds.
	ZeroShells
)

func (r Reason) String() string {
	switch r {
	case AllTanksDead:
		return "ALL_TANKS_DEAD"
	case MaxSteps:
		return "MAX_STEPS"
	case ZeroShells:
		return "ZERO_SHELLS"
	}
	return fmt.Sprintf("Reason(%d)", uint8(r))
}

// MarshalJSON encodes the reason by name.
func (r Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a reason name.
func (r *Reason) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseReason(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseReason returns the reason with the given name.
func ParseReason(s string) (Reason, error) {
	for _, r := range []Reason{AllTanksDead, MaxSteps, ZeroShells} {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown reason %q", s)
}

// Tie is the Winner value of a drawn game.
const Tie = 0

// Result is the immutable outcome of one game.
type Result struct {
	Winner    int      `json:"winner"`
	Reason    Reason   `json:"reason"`
	Remaining [2]int   `json:"remaining_tanks"`
	Board     Snapshot `json:"board"`
	Rounds    int      `json:"rounds"`
}

// Equivalent reports whether two results have the same winner, reason,
// round count and final board.
func (r Result) Equivalent(o Result) bool {
	return r.Winner == o.Winner &&
		r.Reason == o.Reason &&
		r.Rounds == o.Rounds &&
		r.Board.Equal(o.Board)
}

// Summary renders the result as a single log line.
func (r Result) Summary() string {
	switch {
	case r.Reason == AllTanksDead && r.Winner == Tie:
		return "Tie, both players have zero tanks"
	case r.Reason == AllTanksDead:
		return fmt.Sprintf("Player %d won with %d tanks still alive", r.Winner, r.Remaining[r.Winner-1])
	case r.Reason == MaxSteps:
		return fmt.Sprintf("Tie, reached max steps = %d, player 1 has %d tanks, player 2 has %d tanks",
			r.Rounds, r.Remaining[0], r.Remaining[1])
	default:
		return "Tie, both players have zero shells"
	}
}

package battle

import (
	"encoding/json"
	"testing"
)

func TestDirectionRotate(t *testing.T) {
	tests := []struct {
		from  Direction
		steps int
		want  Direction
	}{
		{Up, 2, Right},
		{Up, -2, Left},
		{Up, 1, UpRight},
		{Up, -1, UpLeft},
		{Left, 4, Right},
		{UpLeft, 1, Up},
	}
	for _, tc := range tests {
		if got := tc.from.Rotate(tc.steps); got != tc.want {
			t.Errorf("%s.Rotate(%d): expected %s, got %s", tc.from, tc.steps, tc.want, got)
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	for d := Direction(0); d < NumDirections; d++ {
		o := d.Opposite()
		if !d.IsOpposite(o) {
			t.Errorf("expected %s opposite %s", d, o)
		}
		dx, dy := d.Delta()
		ox, oy := o.Delta()
		if dx != -ox || dy != -oy {
			t.Errorf("%s and %s deltas do not cancel", d, o)
		}
		if got, ok := DirectionFromDelta(dx*3, dy*3); !ok || got != d {
			t.Errorf("DirectionFromDelta(%d, %d): expected %s, got %s", dx*3, dy*3, d, got)
		}
	}
	if Up.IsOpposite(Right) {
		t.Error("Up and Right are not opposite")
	}
}

func TestParseAction(t *testing.T) {
	for a := DoNothing; a <= GetBattleInfo; a++ {
		got, err := ParseAction(a.String())
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", a.String(), err)
		}
		if got != a {
			t.Errorf("expected %s, got %s", a, got)
		}
	}
	if _, err := ParseAction("Jump"); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestCellSymbols(t *testing.T) {
	tests := []struct {
		cell Cell
		sym  byte
	}{
		{TankCell(1), '1'},
		{TankCell(2), '2'},
		{Cell{Kind: CellTankWithShell, Owner: 1}, 'a'},
		{Cell{Kind: CellTankWithShell, Owner: 2}, 'b'},
		{Cell{Kind: CellTankHit, Owner: 1}, 'c'},
		{Cell{Kind: CellTankHit, Owner: 2}, 'd'},
		{Cell{Kind: CellShellsPassing}, SymbolPassing},
		{Cell{Kind: CellWeakWall}, SymbolWeakWall},
	}
	for _, tc := range tests {
		if got := tc.cell.Symbol(); got != tc.sym {
			t.Errorf("expected %q, got %q", tc.sym, got)
		}
		back, ok := CellFromSymbol(tc.sym)
		if !ok || back != tc.cell {
			t.Errorf("CellFromSymbol(%q): expected %+v, got %+v", tc.sym, tc.cell, back)
		}
	}
	if _, ok := CellFromSymbol('x'); ok {
		t.Error("expected unknown symbol to be rejected")
	}
}

func TestSnapshotPaddingAndBounds(t *testing.T) {
	s := NewSnapshot(4, 3, []string{"1#", "$$$$$$"})

	if got := s.Rows(); got[0] != "1#  " || got[1] != "$$$$" || got[2] != "    " {
		t.Errorf("unexpected rows %q", got)
	}
	if got := s.ObjectAt(-1, 0); got != SymbolOutOfView {
		t.Errorf("expected out-of-view marker, got %q", got)
	}
	if got := s.Normalized().Row(1); got != "####" {
		t.Errorf("expected weak walls normalized, got %q", got)
	}
	if s.Equal(s.Normalized()) {
		t.Error("expected normalized snapshot to differ")
	}
	if got := s.With(0, 0, SymbolSelf).ObjectAt(0, 0); got != SymbolSelf {
		t.Errorf("expected self marker, got %q", got)
	}
	if got := s.ObjectAt(0, 0); got != '1' {
		t.Errorf("With must not modify the original, got %q", got)
	}
}

func TestResultJSON(t *testing.T) {
	res := Result{
		Winner:    2,
		Reason:    AllTanksDead,
		Remaining: [2]int{0, 1},
		Board:     NewSnapshot(3, 1, []string{"2 #"}),
		Rounds:    7,
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"winner":2,"reason":"ALL_TANKS_DEAD","remaining_tanks":[0,1],"board":["2 #"],"rounds":7}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}

	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equivalent(res) {
		t.Errorf("expected equivalent result, got %+v", back)
	}
}

func TestResultSummary(t *testing.T) {
	tests := []struct {
		res  Result
		want string
	}{
		{Result{Winner: Tie, Reason: AllTanksDead}, "Tie, both players have zero tanks"},
		{Result{Winner: 1, Reason: AllTanksDead, Remaining: [2]int{2, 0}}, "Player 1 won with 2 tanks still alive"},
		{Result{Winner: Tie, Reason: MaxSteps, Rounds: 10, Remaining: [2]int{1, 3}},
			"Tie, reached max steps = 10, player 1 has 1 tanks, player 2 has 3 tanks"},
	}
	for _, tc := range tests {
		if got := tc.res.Summary(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

package battle

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

// scripted replays a fixed list of actions, then does nothing.
type scripted struct {
	actions []Action
	next    int
	infos   []BattleInfo
}

func (s *scripted) Action() Action {
	if s.next >= len(s.actions) {
		return DoNothing
	}
	a := s.actions[s.next]
	s.next++
	return a
}

func (s *scripted) UpdateBattleInfo(info BattleInfo) {
	s.infos = append(s.infos, info)
}

// scripts hands out a fresh scripted algorithm per tank, keyed by tank index.
func scripts(per ...[]Action) TankAlgorithmFactory {
	return func(player, tank int) TankAlgorithm {
		if tank < len(per) {
			return &scripted{actions: per[tank]}
		}
		return &scripted{}
	}
}

func repeat(a Action, n int) []Action {
	out := make([]Action, n)
	for i := range out {
		out[i] = a
	}
	return out
}

func newGame(rows []string, maxSteps, shells int, p1, p2 TankAlgorithmFactory) Game {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return Game{
		Width:     w,
		Height:    len(rows),
		Map:       NewSnapshot(w, len(rows), rows),
		MapName:   "test",
		MaxSteps:  maxSteps,
		NumShells: shells,
		Player1:   Side{Name: "p1", Tanks: p1},
		Player2:   Side{Name: "p2", Tanks: p2},
	}
}

func TestRunMaxStepsTie(t *testing.T) {
	g := newGame([]string{
		"1   ",
		"   2",
	}, 1, 0, scripts(), scripts())

	res := NewManager().Run(g)

	if res.Winner != Tie {
		t.Errorf("expected tie, got winner %d", res.Winner)
	}
	if res.Reason != MaxSteps {
		t.Errorf("expected MAX_STEPS, got %s", res.Reason)
	}
	if res.Rounds != 1 {
		t.Errorf("expected 1 round, got %d", res.Rounds)
	}
	if res.Remaining != [2]int{1, 1} {
		t.Errorf("expected remaining {1,1}, got %v", res.Remaining)
	}
}

func TestRunToroidalWrap(t *testing.T) {
	// Player 2 tanks start facing right.
	g := newGame([]string{
		"    2",
		"     ",
		"1    ",
	}, 1, 0, scripts(), scripts([]Action{MoveForward}))

	res := NewManager().Run(g)

	if got := res.Board.Row(0); got != "2    " {
		t.Errorf("expected tank to wrap to column 0, got row %q", got)
	}
}

func TestRunBackwardMoveLatency(t *testing.T) {
	cases := []struct {
		steps int
		row   string
	}{
		{1, "  2   "},
		{2, "  2   "},
		{3, " 2    "},
	}
	for _, tc := range cases {
		g := newGame([]string{
			"      ",
			"  2   ",
			"1     ",
		}, tc.steps, 0, scripts(), scripts([]Action{MoveBackward, Shoot, RotateLeft45}))

		res := NewManager().Run(g)
		if got := res.Board.Row(1); got != tc.row {
			t.Errorf("after %d rounds: expected row %q, got %q", tc.steps, tc.row, got)
		}
	}
}

func TestRunOpposedShellsDestroyEachOther(t *testing.T) {
	g := newGame([]string{"2     1"}, 1, 1,
		scripts([]Action{Shoot}), scripts([]Action{Shoot}))

	res := NewManager().Run(g)

	if got := res.Board.Row(0); got != "2     1" {
		t.Errorf("expected both shells gone, got %q", got)
	}
	if res.Remaining != [2]int{1, 1} {
		t.Errorf("expected both tanks alive, got %v", res.Remaining)
	}
}

func TestShellsCrossingAtAngleSurviveFirstContact(t *testing.T) {
	m := newMatch(newGame([]string{
		"     ",
		"     ",
		"     ",
		"     ",
		"1   2",
	}, 10, 0, nil, nil), buildOptions(nil))
	m.shells = []*shell{
		{x: 1, y: 1, dir: Right},
		{x: 2, y: 0, dir: Down},
	}

	m.moveShells()
	if len(m.shells) != 2 {
		t.Fatalf("expected 2 shells after first contact, got %d", len(m.shells))
	}
	if got := m.render().ObjectAt(2, 1); got != SymbolPassing {
		t.Errorf("expected passing marker, got %q", got)
	}

	m.moveShells()
	if len(m.shells) != 2 {
		t.Fatalf("expected shells to separate, got %d", len(m.shells))
	}
	m.destroyColocatedShells()
	if len(m.shells) != 2 {
		t.Errorf("expected separated shells to survive, got %d", len(m.shells))
	}
}

func TestColocatedShellsDestroyedAfterPhases(t *testing.T) {
	m := newMatch(newGame([]string{
		"     ",
		"     ",
		"     ",
		"1   2",
	}, 10, 0, nil, nil), buildOptions(nil))
	m.shells = []*shell{
		{x: 1, y: 1, dir: Right},
		{x: 2, y: 0, dir: Down},
	}

	m.moveShells()
	m.destroyColocatedShells()
	if len(m.shells) != 0 {
		t.Errorf("expected co-located shells to be destroyed, got %d", len(m.shells))
	}
	if got := m.render().ObjectAt(2, 1); got != SymbolEmpty {
		t.Errorf("expected empty cell, got %q", got)
	}
}

func TestRunZeroShellsTimeout(t *testing.T) {
	rows := []string{
		"1 # 2",
	}
	res := NewManager().Run(newGame(rows, 1000, 0, scripts(), scripts()))
	if res.Reason != ZeroShells || res.Winner != Tie {
		t.Fatalf("expected zero-shells tie, got %s winner %d", res.Reason, res.Winner)
	}
	if res.Rounds != DefaultNoAmmoRounds {
		t.Errorf("expected %d rounds, got %d", DefaultNoAmmoRounds, res.Rounds)
	}

	res = NewManager(WithNoAmmoRounds(5)).Run(newGame(rows, 1000, 0, scripts(), scripts()))
	if res.Rounds != 5 {
		t.Errorf("expected 5 rounds, got %d", res.Rounds)
	}
}

func TestRunShellKillsTank(t *testing.T) {
	g := newGame([]string{"2  1  "}, 10, 1, scripts(), scripts([]Action{Shoot}))

	res := NewManager().Run(g)

	if res.Winner != 2 || res.Reason != AllTanksDead {
		t.Fatalf("expected player 2 win, got winner %d reason %s", res.Winner, res.Reason)
	}
	if res.Rounds != 1 {
		t.Errorf("expected 1 round, got %d", res.Rounds)
	}
	if res.Remaining != [2]int{0, 1} {
		t.Errorf("expected remaining {0,1}, got %v", res.Remaining)
	}
	if got := res.Board.Row(0); got != "2     " {
		t.Errorf("expected only tank 2 left, got %q", got)
	}
}

func TestRunPointBlankShot(t *testing.T) {
	g := newGame([]string{"21   "}, 10, 1, scripts(), scripts([]Action{Shoot}))

	res := NewManager().Run(g)

	if res.Winner != 2 || res.Rounds != 1 {
		t.Errorf("expected player 2 win in round 1, got winner %d round %d", res.Winner, res.Rounds)
	}
}

func TestRunMineDestroysTank(t *testing.T) {
	g := newGame([]string{"2@  1"}, 10, 0, scripts(), scripts([]Action{MoveForward}))

	res := NewManager().Run(g)

	if res.Winner != 1 {
		t.Errorf("expected player 1 win, got %d", res.Winner)
	}
	if got := res.Board.Row(0); got != "    1" {
		t.Errorf("expected mine cleared, got %q", got)
	}
}

func TestRunTanksCollide(t *testing.T) {
	g := newGame([]string{"2 1", "   "}, 10, 0,
		scripts([]Action{MoveForward}), scripts([]Action{MoveForward}))

	res := NewManager().Run(g)

	if res.Winner != Tie || res.Reason != AllTanksDead {
		t.Errorf("expected all-dead tie, got winner %d reason %s", res.Winner, res.Reason)
	}
	if res.Remaining != [2]int{0, 0} {
		t.Errorf("expected no tanks left, got %v", res.Remaining)
	}
}

func TestRunWallWeakenedThenDestroyed(t *testing.T) {
	rows := []string{"2 #  1"}
	shots := append([]Action{Shoot}, repeat(DoNothing, ShootCooldown)...)
	shots = append(shots, Shoot)

	res := NewManager().Run(newGame(rows, 1, 2, scripts(), scripts(shots)))
	if got := res.Board.ObjectAt(2, 0); got != SymbolWeakWall {
		t.Errorf("expected weakened wall after one hit, got %q", got)
	}

	res = NewManager().Run(newGame(rows, len(shots), 2, scripts(), scripts(shots)))
	if got := res.Board.ObjectAt(2, 0); got != SymbolEmpty {
		t.Errorf("expected wall destroyed after two hits, got %q", got)
	}
}

func TestRunMoveIntoWallRejected(t *testing.T) {
	var log bytes.Buffer
	g := newGame([]string{"2#  1"}, 1, 0, scripts(), scripts([]Action{MoveForward}))

	res := NewManager(WithRoundLog(&log)).Run(g)

	if got := res.Board.Row(0); got != "2#  1" {
		t.Errorf("expected no movement, got %q", got)
	}
	if !strings.Contains(log.String(), "MoveForward (ignored)") {
		t.Errorf("expected ignored move in round log, got %q", log.String())
	}
}

type recordingPlayer struct {
	views []Snapshot
	tanks []TankAlgorithm
}

func (p *recordingPlayer) UpdateTankWithBattleInfo(tank TankAlgorithm, view View) {
	p.tanks = append(p.tanks, tank)
	p.views = append(p.views, CaptureView(view, 5, 2))
	tank.UpdateBattleInfo("ping")
}

func TestRunBattleInfoMarksSelf(t *testing.T) {
	player := &recordingPlayer{}
	var algo *scripted
	factory := func(p, tank int) TankAlgorithm {
		algo = &scripted{actions: []Action{GetBattleInfo}}
		return algo
	}

	g := newGame([]string{"1 #  ", "    2"}, 1, 0, factory, scripts())
	g.Player1.Player = player

	NewManager().Run(g)

	if len(player.views) != 1 {
		t.Fatalf("expected 1 battle info call, got %d", len(player.views))
	}
	if got := player.views[0].Rows(); !reflect.DeepEqual(got, []string{"% #  ", "    2"}) {
		t.Errorf("unexpected view %q", got)
	}
	if player.tanks[0] != algo {
		t.Error("expected the requesting tank's algorithm")
	}
	if len(algo.infos) != 1 || algo.infos[0] != "ping" {
		t.Errorf("expected info pushed to the algorithm, got %v", algo.infos)
	}
}

func TestRunImmediateWinWithoutOpponent(t *testing.T) {
	res := NewManager().Run(newGame([]string{"1  ", "   "}, 10, 0, scripts(), scripts()))
	if res.Winner != 1 || res.Rounds != 0 || res.Reason != AllTanksDead {
		t.Errorf("expected immediate player 1 win, got %+v", res)
	}
}

func TestRunDeterministic(t *testing.T) {
	rows := []string{
		"1  #   @  ",
		"  $    #  ",
		" 1   *   2",
		"#   @    2",
	}
	p1 := scripts(
		[]Action{Shoot, RotateRight45, MoveForward, MoveBackward, Shoot, MoveForward},
		[]Action{MoveForward, Shoot, RotateLeft90, Shoot, GetBattleInfo},
	)
	p2 := scripts(
		[]Action{Shoot, MoveForward, MoveForward, RotateRight90, Shoot},
		[]Action{MoveBackward, MoveBackward, MoveBackward, Shoot},
	)

	var logA, logB bytes.Buffer
	a := NewManager(WithRoundLog(&logA)).Run(newGame(rows, 30, 3, p1, p2))
	b := NewManager(WithRoundLog(&logB)).Run(newGame(rows, 30, 3, p1, p2))

	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical results:\n%+v\n%+v", a, b)
	}
	if !a.Equivalent(b) {
		t.Error("expected equivalent results")
	}
	if logA.String() != logB.String() {
		t.Error("expected identical round logs")
	}
}

func TestRoundLogFormat(t *testing.T) {
	var log bytes.Buffer
	g := newGame([]string{"2  1  "}, 10, 1, scripts([]Action{RotateLeft90}), scripts([]Action{Shoot}))

	NewManager(WithRoundLog(&log)).Run(g)

	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", lines)
	}
	if lines[0] != "Shoot, RotateLeft90 (killed)" {
		t.Errorf("unexpected round line %q", lines[0])
	}
	if lines[1] != "Player 2 won with 1 tanks still alive" {
		t.Errorf("unexpected result line %q", lines[1])
	}
}

func TestFireIntoShellDestroysOnlyOne(t *testing.T) {
	m := newMatch(newGame([]string{"  1 "}, 10, 2, scripts(), scripts()), buildOptions(nil))
	m.shells = []*shell{{x: 1, y: 0, dir: Up}, {x: 1, y: 0, dir: Down}}

	m.fire(m.tanks[0])

	if !m.shells[0].dead || m.shells[1].dead {
		t.Errorf("expected only the first shell destroyed, got dead=%v,%v", m.shells[0].dead, m.shells[1].dead)
	}
	if len(m.shells) != 2 {
		t.Errorf("expected no new shell, got %d shells", len(m.shells))
	}
}

package battle

import (
	"fmt"
	"strings"
)

// Manager is the standard GameManager. It holds only configuration, so one
// Manager may run many games concurrently.
type Manager struct {
	opts options
}

// NewManager creates a Manager.
func NewManager(opts ...Option) *Manager {
	return &Manager{opts: buildOptions(opts)}
}

// NewGameManager is a GameManagerFactory for the standard engine.
func NewGameManager(opts ...Option) GameManager {
	return NewManager(opts...)
}

// Run plays the game to completion. All mutable state is private to the
// call; nothing is shared with other runs.
func (m *Manager) Run(g Game) Result {
	return newMatch(g, m.opts).play()
}

// tank is the engine's record of one tank. Dead tanks stay in storage for
// final accounting.
type tank struct {
	player    int
	index     int
	x, y      int
	dir       Direction
	alive     bool
	turnsDead int
	control   Control
	algo      TankAlgorithm
}

// shell is a projectile in flight.
type shell struct {
	x, y      int
	dir       Direction
	aboveMine bool
	// pointBlank is set when the shell was fired into an occupied cell;
	// the occupant is destroyed on the shell's next move.
	pointBlank bool
	dead       bool
}

type match struct {
	opts     options
	game     Game
	width    int
	height   int
	ground   []terrain
	tanks    []*tank
	shells   []*shell
	round    int
	noAmmo   bool
	ammoLeft int
	log      *roundLog
}

func newMatch(g Game, opts options) *match {
	m := &match{
		opts:     opts,
		game:     g,
		width:    g.Width,
		height:   g.Height,
		ground:   make([]terrain, g.Width*g.Height),
		ammoLeft: opts.noAmmoRounds,
		log:      newRoundLog(opts.roundLog),
	}

	counts := [2]int{}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			sym := SymbolEmpty
			if g.Map != nil {
				sym = g.Map.ObjectAt(x, y)
			}
			cell, _ := CellFromSymbol(sym)
			switch cell.Kind {
			case CellWall:
				m.ground[m.idx(x, y)] = groundWall
			case CellWeakWall:
				m.ground[m.idx(x, y)] = groundWeakWall
			case CellMine:
				m.ground[m.idx(x, y)] = groundMine
			case CellTank:
				player := cell.Owner
				t := &tank{
					player:  player,
					index:   counts[player-1],
					x:       x,
					y:       y,
					dir:     initialFacing(player),
					alive:   true,
					control: NewControl(g.NumShells),
				}
				t.algo = newAlgorithm(g.side(player).Tanks, player, t.index)
				counts[player-1]++
				m.tanks = append(m.tanks, t)
			case CellEmpty, CellShell, CellShellsPassing, CellTankWithShell, CellTankHit:
				// initial boards carry no shells
			}
		}
	}
	return m
}

func initialFacing(player int) Direction {
	if player == 1 {
		return Left
	}
	return Right
}

func newAlgorithm(f TankAlgorithmFactory, player, index int) TankAlgorithm {
	if f == nil {
		return idleAlgorithm{}
	}
	if a := f(player, index); a != nil {
		return a
	}
	return idleAlgorithm{}
}

type idleAlgorithm struct{}

func (idleAlgorithm) Action() Action              { return DoNothing }
func (idleAlgorithm) UpdateBattleInfo(BattleInfo) {}

func (m *match) play() Result {
	alive := m.aliveCounts()
	if alive[0] == 0 || alive[1] == 0 {
		return m.finish(winnerOf(alive), AllTanksDead)
	}
	if m.game.MaxSteps <= 0 {
		return m.finish(Tie, MaxSteps)
	}

	for {
		prev := m.render()
		requests := m.collectActions()
		steps := m.applyActions(requests, prev)

		m.moveShells()
		m.moveShells()
		m.destroyColocatedShells()

		m.round++
		m.log.round(m.tanks, requests, steps)
		for _, t := range m.tanks {
			if !t.alive {
				t.turnsDead++
			}
		}

		if res, over := m.checkStatus(); over {
			return res
		}
	}
}

// collectActions queries every live tank's algorithm. Dead tanks record
// DoNothing and never consume a turn from their algorithm.
func (m *match) collectActions() []Action {
	requests := make([]Action, len(m.tanks))
	for i, t := range m.tanks {
		if t.alive {
			requests[i] = t.algo.Action()
		} else {
			requests[i] = DoNothing
		}
	}
	return requests
}

func (m *match) applyActions(requests []Action, prev Snapshot) []Step {
	steps := make([]Step, len(m.tanks))
	for i, t := range m.tanks {
		if !t.alive {
			continue
		}
		step := t.control.Resolve(requests[i], func(backward bool) bool {
			dir := t.dir
			if backward {
				dir = dir.Opposite()
			}
			x, y := m.next(t.x, t.y, dir)
			g := m.ground[m.idx(x, y)]
			return g != groundWall && g != groundWeakWall
		})
		steps[i] = step

		switch step.Exec {
		case MoveForward:
			m.moveTank(t, t.dir)
		case MoveBackward:
			m.moveTank(t, t.dir.Opposite())
		case Shoot:
			m.fire(t)
		case GetBattleInfo:
			m.battleInfo(t, prev)
		case RotateLeft90, RotateRight90, RotateLeft45, RotateRight45:
			turn, _ := step.Exec.Rotation()
			t.dir = t.dir.Rotate(turn)
		case DoNothing:
		}
	}
	return steps
}

func (m *match) moveTank(t *tank, dir Direction) {
	x, y := m.next(t.x, t.y, dir)
	i := m.idx(x, y)

	if m.ground[i] == groundMine {
		t.alive = false
		m.ground[i] = groundEmpty
		return
	}
	if other := m.tankAt(x, y, t); other != nil {
		t.alive = false
		other.alive = false
		return
	}
	for _, s := range m.shells {
		if !s.dead && s.x == x && s.y == y && s.dir.IsOpposite(dir) {
			t.alive = false
			s.dead = true
			return
		}
	}
	t.x, t.y = x, y
}

func (m *match) fire(t *tank) {
	x, y := m.next(t.x, t.y, t.dir)
	i := m.idx(x, y)

	switch m.ground[i] {
	case groundWall:
		m.ground[i] = groundWeakWall
		return
	case groundWeakWall:
		m.ground[i] = groundEmpty
		return
	case groundEmpty, groundMine:
	}

	// A shot fired into a shell destroys that one shell and itself.
	for _, s := range m.shells {
		if !s.dead && s.x == x && s.y == y {
			s.dead = true
			return
		}
	}

	m.shells = append(m.shells, &shell{
		x:          x,
		y:          y,
		dir:        t.dir,
		aboveMine:  m.ground[i] == groundMine,
		pointBlank: m.tankAt(x, y, nil) != nil,
	})
}

func (m *match) battleInfo(t *tank, prev Snapshot) {
	player := m.game.side(t.player).Player
	if player == nil {
		return
	}
	player.UpdateTankWithBattleInfo(t.algo, prev.With(t.x, t.y, SymbolSelf))
}

// checkStatus runs the end-of-round termination checks: a side without
// tanks, the shared no-ammo countdown, then the step budget.
func (m *match) checkStatus() (Result, bool) {
	alive := m.aliveCounts()
	if alive[0] == 0 || alive[1] == 0 {
		return m.finish(winnerOf(alive), AllTanksDead), true
	}

	if !m.noAmmo {
		m.noAmmo = true
		for _, t := range m.tanks {
			if t.alive && t.control.Ammo > 0 {
				m.noAmmo = false
				break
			}
		}
	}
	if m.noAmmo {
		m.ammoLeft--
		if m.ammoLeft <= 0 {
			return m.finish(Tie, ZeroShells), true
		}
	}

	if m.round >= m.game.MaxSteps {
		return m.finish(Tie, MaxSteps), true
	}
	return Result{}, false
}

func winnerOf(alive [2]int) int {
	switch {
	case alive[0] == 0 && alive[1] == 0:
		return Tie
	case alive[0] == 0:
		return 2
	default:
		return 1
	}
}

func (m *match) finish(winner int, reason Reason) Result {
	res := Result{
		Winner:    winner,
		Reason:    reason,
		Remaining: m.aliveCounts(),
		Board:     m.render(),
		Rounds:    m.round,
	}
	if reason == ZeroShells {
		m.log.line(fmt.Sprintf("Tie, both players have zero shells for %d steps", m.opts.noAmmoRounds))
	} else {
		m.log.line(res.Summary())
	}
	return res
}

func (m *match) aliveCounts() [2]int {
	var counts [2]int
	for _, t := range m.tanks {
		if t.alive {
			counts[t.player-1]++
		}
	}
	return counts
}

func (m *match) tankAt(x, y int, except *tank) *tank {
	for _, t := range m.tanks {
		if t.alive && t != except && t.x == x && t.y == y {
			return t
		}
	}
	return nil
}

func (m *match) idx(x, y int) int {
	return y*m.width + x
}

// next returns the neighbouring coordinate in dir, wrapping at the edges.
func (m *match) next(x, y int, dir Direction) (int, int) {
	dx, dy := dir.Delta()
	return (x + dx + m.width) % m.width, (y + dy + m.height) % m.height
}

// render draws the current board, including transient composite cells.
func (m *match) render() Snapshot {
	shellCount := make([]int, len(m.ground))
	pointBlank := make([]bool, len(m.ground))
	for _, s := range m.shells {
		if s.dead {
			continue
		}
		i := m.idx(s.x, s.y)
		shellCount[i]++
		pointBlank[i] = pointBlank[i] || s.pointBlank
	}

	rows := make([]string, m.height)
	var b strings.Builder
	for y := 0; y < m.height; y++ {
		b.Reset()
		for x := 0; x < m.width; x++ {
			i := m.idx(x, y)
			cell := m.ground[i].cell()
			switch {
			case shellCount[i] == 1:
				cell = Cell{Kind: CellShell}
			case shellCount[i] > 1:
				cell = Cell{Kind: CellShellsPassing}
			}
			if t := m.tankAt(x, y, nil); t != nil {
				switch {
				case shellCount[i] > 0 && pointBlank[i]:
					cell = Cell{Kind: CellTankHit, Owner: t.player}
				case shellCount[i] > 0:
					cell = Cell{Kind: CellTankWithShell, Owner: t.player}
				default:
					cell = TankCell(t.player)
				}
			}
			b.WriteByte(cell.Symbol())
		}
		rows[y] = b.String()
	}
	return NewSnapshot(m.width, m.height, rows)
}

package algo

import (
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

const (
	chaserRefresh = 4
	sentryRefresh = 6
	maxPlan       = 3
)

// tracker is a tank's own bookkeeping between battle info updates. It
// assumes its requests are honored and resynchronises on every update.
type tracker struct {
	player    int
	dir       battle.Direction
	pos       Point
	info      *BattleInfo
	ammo      int
	cooldown  int
	sinceInfo int
}

func newTracker(player int) tracker {
	dir := battle.Right
	if player == 1 {
		dir = battle.Left
	}
	return tracker{player: player, dir: dir, ammo: -1}
}

func (t *tracker) canShoot() bool {
	return t.ammo > 0 && t.cooldown == 0
}

func (t *tracker) record(a battle.Action) {
	t.sinceInfo++
	if a == battle.Shoot && t.canShoot() {
		t.ammo--
		t.cooldown = battle.ShootCooldown
		return
	}
	if t.cooldown > 0 {
		t.cooldown--
	}
	switch a {
	case battle.RotateLeft45, battle.RotateRight45, battle.RotateLeft90, battle.RotateRight90:
		turn, _ := a.Rotation()
		t.dir = t.dir.Rotate(turn)
	case battle.MoveForward:
		if t.info != nil {
			if next := t.info.step(t.pos, t.dir); !blocksShell(t.info.at(next)) {
				t.pos = next
			}
		}
	case battle.GetBattleInfo:
		t.sinceInfo = 0
	}
}

func (t *tracker) receive(info battle.BattleInfo) {
	in, ok := info.(*BattleInfo)
	if !ok {
		return
	}
	t.info = in
	if in.Self.X >= 0 {
		t.pos = in.Self
	}
	if t.ammo < 0 {
		t.ammo = in.Ammo
	}
	in.Ammo = t.ammo
}

// aim returns the rotation toward the cheapest direction with an enemy
// in line, or DoNothing when none is.
func (t *tracker) aim() (battle.Action, bool) {
	for _, turn := range []int{0, 1, -1, 2, -2, 3, -3, 4} {
		d := t.dir.Rotate(turn)
		if t.info.inLine(t.pos, d) {
			return turnToward(t.dir, d), true
		}
	}
	return battle.DoNothing, false
}

// Chaser hunts the nearest enemy: it walks a breadth-first path toward it,
// turns to fire when one is in line and steps aside from nearby shells.
type Chaser struct {
	tracker
	plan []battle.Direction
}

// NewChaser is a battle.TankAlgorithmFactory.
func NewChaser(player, tank int) battle.TankAlgorithm {
	return &Chaser{tracker: newTracker(player)}
}

// Action implements battle.TankAlgorithm.
func (c *Chaser) Action() battle.Action {
	a := c.decide()
	c.record(a)
	return a
}

// UpdateBattleInfo implements battle.TankAlgorithm.
func (c *Chaser) UpdateBattleInfo(info battle.BattleInfo) {
	c.receive(info)
	c.plan = nil
}

func (c *Chaser) decide() battle.Action {
	if c.info == nil || c.sinceInfo >= chaserRefresh {
		return battle.GetBattleInfo
	}

	if c.info.threatened(c.pos) {
		next := c.info.step(c.pos, c.dir)
		cell := c.info.at(next)
		if !blocksTank(cell) && tankOwner(cell) == 0 && !c.info.threatened(next) {
			c.plan = nil
			return battle.MoveForward
		}
	}

	if c.canShoot() && c.info.inLine(c.pos, c.dir) {
		return battle.Shoot
	}
	if turn, ok := c.aim(); ok && turn != battle.DoNothing {
		return turn
	}

	if len(c.plan) == 0 {
		c.plan = c.info.pathToEnemy(c.pos)
		if len(c.plan) > maxPlan {
			c.plan = c.plan[:maxPlan]
		}
		if len(c.plan) == 0 {
			return battle.GetBattleInfo
		}
	}
	if d := c.plan[0]; d != c.dir {
		return turnToward(c.dir, d)
	}
	c.plan = c.plan[1:]
	return battle.MoveForward
}

// Sentry holds its position, turns toward any enemy in line and fires.
type Sentry struct {
	tracker
}

// NewSentry is a battle.TankAlgorithmFactory.
func NewSentry(player, tank int) battle.TankAlgorithm {
	return &Sentry{tracker: newTracker(player)}
}

// Action implements battle.TankAlgorithm.
func (s *Sentry) Action() battle.Action {
	a := s.decide()
	s.record(a)
	return a
}

// UpdateBattleInfo implements battle.TankAlgorithm.
func (s *Sentry) UpdateBattleInfo(info battle.BattleInfo) {
	s.receive(info)
}

func (s *Sentry) decide() battle.Action {
	if s.info == nil || s.sinceInfo >= sentryRefresh {
		return battle.GetBattleInfo
	}
	if s.canShoot() && s.info.inLine(s.pos, s.dir) {
		return battle.Shoot
	}
	if turn, ok := s.aim(); ok && turn != battle.DoNothing {
		return turn
	}
	return battle.DoNothing
}

package algo

import (
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

func (info *BattleInfo) step(p Point, d battle.Direction) Point {
	dx, dy := d.Delta()
	return Point{
		X: (p.X + dx + info.Width) % info.Width,
		Y: (p.Y + dy + info.Height) % info.Height,
	}
}

func (info *BattleInfo) at(p Point) byte {
	return info.Board.ObjectAt(p.X, p.Y)
}

// distance is the number of king moves between a and b on the torus.
func (info *BattleInfo) distance(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	dx = min(dx, info.Width-dx)
	dy = min(dy, info.Height-dy)
	return max(dx, dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// nearestEnemy returns the closest enemy to from.
func (info *BattleInfo) nearestEnemy(from Point) (Point, bool) {
	best, found := Point{}, false
	bestDist := 0
	for _, e := range info.Enemies {
		d := info.distance(from, e)
		if !found || d < bestDist {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}

// inLine walks from `from` in direction d and reports whether the first
// tank hit is an enemy before a wall or a friendly tank stops the shell.
func (info *BattleInfo) inLine(from Point, d battle.Direction) bool {
	p := from
	for range max(info.Width, info.Height) {
		p = info.step(p, d)
		if p == from {
			return false
		}
		c := info.at(p)
		if blocksShell(c) {
			return false
		}
		switch owner := tankOwner(c); {
		case owner == info.Player:
			return false
		case owner != 0:
			return true
		}
	}
	return false
}

// threatened reports whether a shell sits within two cells of p on one
// of the eight lines through it.
func (info *BattleInfo) threatened(p Point) bool {
	for _, s := range info.Shells {
		for d := battle.Direction(0); d < battle.NumDirections; d++ {
			q := p
			for range 2 {
				q = info.step(q, d)
				if q == s {
					return true
				}
			}
		}
	}
	return false
}

// pathToEnemy runs a breadth-first search over passable cells and returns
// the direction sequence leading next to the nearest reachable enemy.
func (info *BattleInfo) pathToEnemy(from Point) []battle.Direction {
	if info.Width <= 0 || info.Height <= 0 {
		return nil
	}
	type node struct {
		prev Point
		dir  battle.Direction
		seen bool
	}
	idx := func(p Point) int { return p.Y*info.Width + p.X }
	nodes := make([]node, info.Width*info.Height)
	nodes[idx(from)].seen = true

	queue := []Point{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for d := battle.Direction(0); d < battle.NumDirections; d++ {
			next := info.step(cur, d)
			n := &nodes[idx(next)]
			if n.seen {
				continue
			}
			c := info.at(next)
			if owner := tankOwner(c); owner != 0 && owner != info.Player {
				// Stop one cell short of the enemy.
				var rev []battle.Direction
				for p := cur; p != from; p = nodes[idx(p)].prev {
					rev = append(rev, nodes[idx(p)].dir)
				}
				out := make([]battle.Direction, len(rev))
				for i, d := range rev {
					out[len(rev)-1-i] = d
				}
				return out
			}
			if blocksTank(c) || tankOwner(c) == info.Player || c == battle.SymbolSelf {
				continue
			}
			n.seen, n.prev, n.dir = true, cur, d
			queue = append(queue, next)
		}
	}
	return nil
}

// turnToward returns the rotation that brings from closest to to.
func turnToward(from, to battle.Direction) battle.Action {
	switch (int(to) - int(from) + battle.NumDirections) % battle.NumDirections {
	case 0:
		return battle.DoNothing
	case 1:
		return battle.RotateRight45
	case 2, 3, 4:
		return battle.RotateRight90
	case 5, 6:
		return battle.RotateLeft90
	default:
		return battle.RotateLeft45
	}
}

package algo

import (
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// Observant hands its tanks the full board.
type Observant struct {
	id        int
	width     int
	height    int
	numShells int
	ammo      map[battle.TankAlgorithm]int
}

// NewObservant is a battle.PlayerFactory.
func NewObservant(player, width, height, maxSteps, numShells int) battle.Player {
	return &Observant{
		id:        player,
		width:     width,
		height:    height,
		numShells: numShells,
		ammo:      make(map[battle.TankAlgorithm]int),
	}
}

// UpdateTankWithBattleInfo implements battle.Player.
func (p *Observant) UpdateTankWithBattleInfo(tank battle.TankAlgorithm, view battle.View) {
	info := newBattleInfo(p.id, view, p.width, p.height, p.numShells, p.knownAmmo(tank))
	tank.UpdateBattleInfo(info)
	p.ammo[tank] = info.Ammo
}

// Ammo returns the ammo a tank last reported, or the initial budget.
func (p *Observant) Ammo(tank battle.TankAlgorithm) int {
	return p.knownAmmo(tank)
}

func (p *Observant) knownAmmo(tank battle.TankAlgorithm) int {
	if n, ok := p.ammo[tank]; ok {
		return n
	}
	return p.numShells
}

// Concentrated only shows each tank the enemy closest to it; every other
// enemy tank is blanked out of the board.
type Concentrated struct {
	Observant
}

// NewConcentrated is a battle.PlayerFactory.
func NewConcentrated(player, width, height, maxSteps, numShells int) battle.Player {
	return &Concentrated{Observant: *NewObservant(player, width, height, maxSteps, numShells).(*Observant)}
}

// UpdateTankWithBattleInfo implements battle.Player.
func (p *Concentrated) UpdateTankWithBattleInfo(tank battle.TankAlgorithm, view battle.View) {
	info := newBattleInfo(p.id, view, p.width, p.height, p.numShells, p.knownAmmo(tank))
	if target, ok := info.nearestEnemy(info.Self); ok {
		for _, e := range info.Enemies {
			if e == target {
				continue
			}
			sym := battle.SymbolEmpty
			if hasShell(info.at(e)) {
				sym = battle.SymbolShell
			}
			info.Board = info.Board.With(e.X, e.Y, sym)
		}
		info.Enemies = []Point{target}
	}
	tank.UpdateBattleInfo(info)
	p.ammo[tank] = info.Ammo
}

package algo

import (
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
	"github.com/ItayH27/tanks-game-simulation/pkg/tbp"
)

// Remote adapts a built-in tank algorithm for tbp.Serve: wire info is
// rebuilt into the BattleInfo the built-ins expect, and the tank's own ammo
// count is reported back.
func Remote(newTank battle.TankAlgorithmFactory) battle.TankAlgorithmFactory {
	return func(player, tank int) battle.TankAlgorithm {
		return &remoteTank{TankAlgorithm: newTank(player, tank), player: player, initial: -1, ammo: -1}
	}
}

// RemoteTanks are the built-in algorithms a tbp bot can serve.
var RemoteTanks = map[string]battle.TankAlgorithmFactory{
	"chaser": NewChaser,
	"sentry": NewSentry,
}

type remoteTank struct {
	battle.TankAlgorithm
	player  int
	initial int
	ammo    int
}

// UpdateBattleInfo implements battle.TankAlgorithm.
func (r *remoteTank) UpdateBattleInfo(info battle.BattleInfo) {
	wire, ok := info.(*tbp.Info)
	if !ok {
		r.TankAlgorithm.UpdateBattleInfo(info)
		return
	}
	if r.initial < 0 {
		r.initial = wire.AmmoHint
	}
	ammo := r.ammo
	if ammo < 0 {
		ammo = wire.AmmoHint
	}
	bi := newBattleInfo(r.player, wire.View(), wire.Width, wire.Height, r.initial, ammo)
	r.TankAlgorithm.UpdateBattleInfo(bi)
	r.ammo = bi.Ammo
}

// Ammo implements tbp.AmmoReporter.
func (r *remoteTank) Ammo() int { return r.ammo }

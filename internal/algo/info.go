// Package algo holds the built-in tank algorithms and players and the
// catalog that exposes them as loadable modules.
package algo

import (
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// Point is a board coordinate.
type Point struct {
	X, Y int
}

// BattleInfo is what the built-in players push to their tanks. The tank
// writes its current ammo back into Ammo before UpdateBattleInfo returns.
type BattleInfo struct {
	Player      int
	Width       int
	Height      int
	Board       battle.Snapshot
	Self        Point
	Enemies     []Point
	Allies      []Point
	Shells      []Point
	InitialAmmo int
	Ammo        int
}

func newBattleInfo(player int, view battle.View, width, height, initialAmmo, ammo int) *BattleInfo {
	info := &BattleInfo{
		Player:      player,
		Width:       width,
		Height:      height,
		Board:       battle.CaptureView(view, width, height),
		Self:        Point{-1, -1},
		InitialAmmo: initialAmmo,
		Ammo:        ammo,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := info.Board.ObjectAt(x, y)
			p := Point{x, y}
			switch {
			case c == battle.SymbolSelf:
				info.Self = p
			case tankOwner(c) == player:
				info.Allies = append(info.Allies, p)
			case tankOwner(c) != 0:
				info.Enemies = append(info.Enemies, p)
			}
			if hasShell(c) {
				info.Shells = append(info.Shells, p)
			}
		}
	}
	return info
}

// tankOwner returns the player owning a tank symbol, or 0.
func tankOwner(c byte) int {
	cell, ok := battle.CellFromSymbol(c)
	if !ok || !cell.HasTank() {
		return 0
	}
	return cell.Owner
}

func hasShell(c byte) bool {
	cell, ok := battle.CellFromSymbol(c)
	return ok && cell.HasShell()
}

func blocksShell(c byte) bool {
	return c == battle.SymbolWall || c == battle.SymbolWeakWall
}

func blocksTank(c byte) bool {
	return blocksShell(c) || c == battle.SymbolMine
}

package algo

import (
	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// PatientNoAmmoRounds is the no-ammo countdown of the "patient" game
// manager.
const PatientNoAmmoRounds = 80

// Builtins returns the compiled-in modules: the chaser and sentry
// algorithms and the standard and patient game managers.
func Builtins() plugin.Catalog {
	return plugin.Catalog{
		"chaser":   RegisterChaser,
		"sentry":   RegisterSentry,
		"standard": RegisterStandard,
		"patient":  RegisterPatient,
	}
}

// RegisterChaser registers chaser tanks coordinated by an observant player.
func RegisterChaser(b *plugin.Builder) error {
	b.Player(NewObservant)
	b.TankAlgorithm(NewChaser)
	return nil
}

// RegisterSentry registers sentry tanks coordinated by a concentrated player.
func RegisterSentry(b *plugin.Builder) error {
	b.Player(NewConcentrated)
	b.TankAlgorithm(NewSentry)
	return nil
}

// RegisterStandard registers the standard game manager.
func RegisterStandard(b *plugin.Builder) error {
	b.GameManager(battle.NewGameManager)
	return nil
}

// RegisterPatient registers a game manager that waits longer before
// calling a no-ammo tie.
func RegisterPatient(b *plugin.Builder) error {
	b.GameManager(func(opts ...battle.Option) battle.GameManager {
		return battle.NewManager(append(opts, battle.WithNoAmmoRounds(PatientNoAmmoRounds))...)
	})
	return nil
}

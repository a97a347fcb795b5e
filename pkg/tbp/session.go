package tbp

import (
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// Session is one tank algorithm living inside a bot process. It
// implements battle.TankAlgorithm.
type Session struct {
	engine *Engine
	id     int

	once sync.Once
	err  error

	// Ammo is the bot's last reported ammo count, or -1 before the first
	// info exchange.
	Ammo int
}

// ID returns the session id used on the wire.
func (s *Session) ID() int { return s.id }

// Err returns the first transport error seen by the session. Once set,
// the session answers DoNothing without contacting the bot.
func (s *Session) Err() error { return s.err }

// Action asks the bot for this round's action. Transport errors and
// unknown action names become DoNothing.
func (s *Session) Action() battle.Action {
	if s.err != nil {
		return battle.DoNothing
	}
	reply, err := s.engine.request("action", s.id, "action "+strconv.Itoa(s.id))
	if err != nil {
		s.fail(err)
		return battle.DoNothing
	}
	a, err := battle.ParseAction(strings.TrimSpace(reply))
	if err != nil {
		log.Debug().Err(err).Int("session", s.id).Msg("tbp: bad action from bot")
		return battle.DoNothing
	}
	return a
}

// UpdateBattleInfo forwards an *Info to the bot. Other info types are
// ignored.
func (s *Session) UpdateBattleInfo(info battle.BattleInfo) {
	in, ok := info.(*Info)
	if !ok || s.err != nil {
		return
	}
	rows := make([]string, len(in.Rows))
	for i, r := range in.Rows {
		rows[i] = "row " + r
	}
	reply, err := s.engine.request("ammo", s.id, in.header(s.id), rows...)
	if err != nil {
		s.fail(err)
		return
	}
	if n, err := strconv.Atoi(strings.TrimSpace(reply)); err == nil {
		s.Ammo = n
	}
}

// Release frees the bot-side session.
func (s *Session) Release() {
	s.once.Do(func() { s.engine.free(s.id) })
}

func (s *Session) fail(err error) {
	s.err = err
	log.Warn().Err(err).Str("bot", s.engine.Name).Int("session", s.id).Msg("tbp: session failed, tank idles")
}

// Player is the host-side battle.Player for bot tanks. It turns each view
// into an *Info and pushes it to the requesting tank.
type Player struct {
	Width     int
	Height    int
	NumShells int
}

// NewPlayer is a battle.PlayerFactory for bot sides.
func NewPlayer(player, width, height, maxSteps, numShells int) battle.Player {
	return &Player{Width: width, Height: height, NumShells: numShells}
}

// UpdateTankWithBattleInfo implements battle.Player.
func (p *Player) UpdateTankWithBattleInfo(tank battle.TankAlgorithm, view battle.View) {
	hint := p.NumShells
	if s, ok := tank.(*Session); ok && s.Ammo >= 0 {
		hint = s.Ammo
	}
	tank.UpdateBattleInfo(NewInfo(view, p.Width, p.Height, hint))
}

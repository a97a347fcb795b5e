package battle

// BattleInfo is the typed exchange object a Player hands to a tank
// algorithm. Its concrete type is agreed between a Player and the
// algorithms it coordinates; the engine never inspects it.
type BattleInfo any

// TankAlgorithm controls a single tank.
type TankAlgorithm interface {
	// Action returns the request for the current round.
	Action() Action
	// UpdateBattleInfo receives knowledge pushed by the tank's Player.
	UpdateBattleInfo(info BattleInfo)
}

// Player coordinates all tanks of one side. The engine calls it whenever
// one of its tanks requests battle info.
type Player interface {
	UpdateTankWithBattleInfo(tank TankAlgorithm, view View)
}

// TankAlgorithmFactory creates the algorithm for tank number tank of the
// given player. Player ids are 1 and 2; tank numbers start at 0.
type TankAlgorithmFactory func(player, tank int) TankAlgorithm

// PlayerFactory creates the Player for one side of a game.
type PlayerFactory func(player, width, height, maxSteps, numShells int) Player

// GameManager runs a complete game. Implementations must be deterministic
// and must not keep references to the players or algorithms after Run returns.
type GameManager interface {
	Run(g Game) Result
}

// GameManagerFactory creates a GameManager configured by opts.
type GameManagerFactory func(opts ...Option) GameManager

// Side is one participant in a game.
type Side struct {
	Name   string
	Player Player
	Tanks  TankAlgorithmFactory
}

// Game holds everything needed to run one battle.
type Game struct {
	Width     int
	Height    int
	Map       View
	MapName   string
	MaxSteps  int
	NumShells int
	Player1   Side
	Player2   Side
}

func (g Game) side(player int) Side {
	if player == 1 {
		return g.Player1
	}
	return g.Player2
}

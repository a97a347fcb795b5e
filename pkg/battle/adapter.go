package battle

// ShootCooldown is the number of rounds a tank must wait after firing.
const ShootCooldown = 4

// backwardDelay is the number of rounds between a backward request and the
// move itself.
const backwardDelay = 2

// BackwardState is the pending-backward-movement sub-state of a tank.
type BackwardState uint8

const (
	// Idle means no backward movement is pending.
	Idle BackwardState = iota
	// BackwardRequested counts down before the backward move executes.
	BackwardRequested
	// MovingBackward follows a completed backward move; a further backward
	// request executes immediately.
	MovingBackward
)

func (s BackwardState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case BackwardRequested:
		return "BackwardRequested"
	case MovingBackward:
		return "MovingBackward"
	}
	return "Unknown"
}

// Step is the adapter's decision for one round: what the engine executes
// and whether the tank's request was honored.
type Step struct {
	Exec     Action
	Accepted bool
}

// Control mediates between what a tank algorithm requests and what the
// engine executes. It owns ammo, shoot cooldown and the backward-move
// state machine.
type Control struct {
	Ammo      int
	Cooldown  int
	state     BackwardState
	countdown int
}

// NewControl returns an idle control with the given ammo.
func NewControl(ammo int) Control {
	return Control{Ammo: ammo}
}

// State returns the backward sub-state and its countdown.
func (c *Control) State() (BackwardState, int) {
	return c.state, c.countdown
}

// CanShoot reports whether a Shoot request would be honored.
func (c *Control) CanShoot() bool {
	return c.Ammo > 0 && c.Cooldown == 0
}

// Resolve advances the state machine by one round. canMove reports whether
// the cell ahead (or behind, when backward is true) is passable.
//
// The cooldown decreases on every round except one where a shot is fired.
// Requests made while a backward move is pending are ignored, except that
// MoveForward cancels the pending move.
func (c *Control) Resolve(req Action, canMove func(backward bool) bool) Step {
	if c.state == MovingBackward {
		if req == MoveBackward {
			// The cooldown advances even when the move is blocked.
			c.tick()
			if !canMove(true) {
				return Step{Exec: DoNothing}
			}
			return Step{Exec: MoveBackward, Accepted: true}
		}
		c.state = Idle
	}

	if c.state == Idle && req == MoveBackward {
		c.state = BackwardRequested
		c.countdown = backwardDelay
	}

	if c.state == BackwardRequested {
		c.tick()
		if req == MoveForward {
			c.state = Idle
			c.countdown = 0
			return Step{Exec: DoNothing}
		}
		if c.countdown == 0 {
			c.state = Idle
			if canMove(true) {
				c.state = MovingBackward
				return Step{Exec: MoveBackward}
			}
			return Step{Exec: DoNothing}
		}
		first := c.countdown == backwardDelay
		c.countdown--
		return Step{Exec: DoNothing, Accepted: first}
	}

	switch req {
	case Shoot:
		if !c.CanShoot() {
			c.tick()
			return Step{Exec: DoNothing}
		}
		c.Ammo--
		c.Cooldown = ShootCooldown
		return Step{Exec: Shoot, Accepted: true}
	case MoveForward:
		c.tick()
		if !canMove(false) {
			return Step{Exec: DoNothing}
		}
		return Step{Exec: MoveForward, Accepted: true}
	case DoNothing, GetBattleInfo, RotateLeft90, RotateRight90, RotateLeft45, RotateRight45:
		c.tick()
		return Step{Exec: req, Accepted: true}
	case MoveBackward:
		// handled by the backward state machine above
		c.tick()
		return Step{Exec: DoNothing}
	}
	c.tick()
	return Step{Exec: DoNothing}
}

func (c *Control) tick() {
	if c.Cooldown > 0 {
		c.Cooldown--
	}
}

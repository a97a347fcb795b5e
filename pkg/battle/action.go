package battle

import "fmt"

// Action is a request a tank algorithm makes for the current round.
type Action uint8

const (
	DoNothing Action = iota
	MoveForward
	MoveBackward
	RotateLeft90
	RotateRight90
	RotateLeft45
	RotateRight45
	Shoot
	GetBattleInfo
)

var actionNames = map[Action]string{
	DoNothing:     "DoNothing",
	MoveForward:   "MoveForward",
	MoveBackward:  "MoveBackward",
	RotateLeft90:  "RotateLeft90",
	RotateRight90: "RotateRight90",
	RotateLeft45:  "RotateLeft45",
	RotateRight45: "RotateRight45",
	Shoot:         "Shoot",
	GetBattleInfo: "GetBattleInfo",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// ParseAction returns the action with the given name.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return DoNothing, fmt.Errorf("unknown action %q", s)
}

// Rotation returns the number of 45 degree clockwise steps a rotate action
// applies, and false for any other action.
func (a Action) Rotation() (int, bool) {
	switch a {
	case RotateLeft90:
		return -2, true
	case RotateRight90:
		return 2, true
	case RotateLeft45:
		return -1, true
	case RotateRight45:
		return 1, true
	case DoNothing, MoveForward, MoveBackward, Shoot, GetBattleInfo:
		return 0, false
	}
	return 0, false
}

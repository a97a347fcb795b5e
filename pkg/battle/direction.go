package battle

// Direction is one of the eight compass headings a tank or shell can face.
// Values increase clockwise starting from Up.
type Direction uint8

const (
	Up Direction = iota
	UpRight
	Right
	DownRight
	Down
	DownLeft
	Left
	UpLeft
)

// NumDirections is the number of compass headings.
const NumDirections = 8

var directionDeltas = [NumDirections][2]int{
	{0, -1},  // U
	{1, -1},  // UR
	{1, 0},   // R
	{1, 1},   // DR
	{0, 1},   // D
	{-1, 1},  // DL
	{-1, 0},  // L
	{-1, -1}, // UL
}

var directionNames = [NumDirections]string{"U", "UR", "R", "DR", "D", "DL", "L", "UL"}

// Delta returns the column and row offset of one step in this direction.
func (d Direction) Delta() (dx, dy int) {
	v := directionDeltas[d%NumDirections]
	return v[0], v[1]
}

// Rotate turns the direction by steps of 45 degrees; positive is clockwise.
func (d Direction) Rotate(steps int) Direction {
	n := (int(d) + steps) % NumDirections
	if n < 0 {
		n += NumDirections
	}
	return Direction(n)
}

// Opposite returns the direction rotated by 180 degrees.
func (d Direction) Opposite() Direction {
	return d.Rotate(NumDirections / 2)
}

// IsOpposite reports whether d and o point in exactly opposite directions.
func (d Direction) IsOpposite(o Direction) bool {
	return d.Opposite() == o
}

func (d Direction) String() string {
	if d >= NumDirections {
		return "Unknown"
	}
	return directionNames[d]
}

// DirectionFromDelta maps a unit step back to its direction. Offsets are
// clamped to -1..1 so any vector yields the closest compass heading.
func DirectionFromDelta(dx, dy int) (Direction, bool) {
	dx, dy = sign(dx), sign(dy)
	for i, v := range directionDeltas {
		if v[0] == dx && v[1] == dy {
			return Direction(i), true
		}
	}
	return 0, false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

package battle

// Board symbols shared with map files and algorithm views.
const (
	SymbolEmpty     byte = ' '
	SymbolWall      byte = '#'
	SymbolWeakWall  byte = '$'
	SymbolMine      byte = '@'
	SymbolShell     byte = '*'
	SymbolPassing   byte = '^'
	SymbolSelf      byte = '%'
	SymbolOutOfView byte = '&'
)

// CellKind tags the contents of one board coordinate.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellWall
	CellWeakWall
	CellMine
	CellShell
	CellTank
	// CellShellsPassing marks two or more shells sharing a coordinate
	// within a round.
	CellShellsPassing
	// CellTankWithShell marks a tank that moved onto a shell travelling
	// in a non-opposing direction.
	CellTankWithShell
	// CellTankHit marks a tank hit point blank by a freshly fired shell;
	// the tank is destroyed on the next shell move.
	CellTankHit
)

// Cell is a tagged union over board contents. Owner is the player id for
// the tank variants and zero otherwise.
type Cell struct {
	Kind  CellKind
	Owner int
}

// TankCell returns the cell for a tank owned by the given player.
func TankCell(owner int) Cell {
	return Cell{Kind: CellTank, Owner: owner}
}

// Symbol renders the cell as its board character.
func (c Cell) Symbol() byte {
	switch c.Kind {
	case CellEmpty:
		return SymbolEmpty
	case CellWall:
		return SymbolWall
	case CellWeakWall:
		return SymbolWeakWall
	case CellMine:
		return SymbolMine
	case CellShell:
		return SymbolShell
	case CellTank:
		return byte('0' + c.Owner)
	case CellShellsPassing:
		return SymbolPassing
	case CellTankWithShell:
		return byte('a' + c.Owner - 1)
	case CellTankHit:
		return byte('c' + c.Owner - 1)
	}
	return SymbolEmpty
}

// CellFromSymbol parses a board character. Unknown characters report false
// and map to an empty cell.
func CellFromSymbol(b byte) (Cell, bool) {
	switch b {
	case SymbolEmpty:
		return Cell{Kind: CellEmpty}, true
	case SymbolWall:
		return Cell{Kind: CellWall}, true
	case SymbolWeakWall:
		return Cell{Kind: CellWeakWall}, true
	case SymbolMine:
		return Cell{Kind: CellMine}, true
	case SymbolShell:
		return Cell{Kind: CellShell}, true
	case SymbolPassing:
		return Cell{Kind: CellShellsPassing}, true
	case '1', '2':
		return TankCell(int(b - '0')), true
	case 'a', 'b':
		return Cell{Kind: CellTankWithShell, Owner: int(b-'a') + 1}, true
	case 'c', 'd':
		return Cell{Kind: CellTankHit, Owner: int(b-'c') + 1}, true
	}
	return Cell{Kind: CellEmpty}, false
}

// IsWall reports whether the cell blocks tank movement.
func (c Cell) IsWall() bool {
	return c.Kind == CellWall || c.Kind == CellWeakWall
}

// HasTank reports whether a live tank occupies the cell.
func (c Cell) HasTank() bool {
	switch c.Kind {
	case CellTank, CellTankWithShell, CellTankHit:
		return true
	case CellEmpty, CellWall, CellWeakWall, CellMine, CellShell, CellShellsPassing:
		return false
	}
	return false
}

// HasShell reports whether at least one shell occupies the cell.
func (c Cell) HasShell() bool {
	switch c.Kind {
	case CellShell, CellShellsPassing, CellTankWithShell, CellTankHit:
		return true
	case CellEmpty, CellWall, CellWeakWall, CellMine, CellTank:
		return false
	}
	return false
}

// terrain is the static layer of the board. Tanks and shells move over it.
type terrain uint8

const (
	groundEmpty terrain = iota
	groundWall
	groundWeakWall
	groundMine
)

func (t terrain) cell() Cell {
	switch t {
	case groundWall:
		return Cell{Kind: CellWall}
	case groundWeakWall:
		return Cell{Kind: CellWeakWall}
	case groundMine:
		return Cell{Kind: CellMine}
	case groundEmpty:
		return Cell{Kind: CellEmpty}
	}
	return Cell{Kind: CellEmpty}
}

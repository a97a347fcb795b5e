package battle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// View is a read-only, coordinate-addressable view of board symbols.
// Coordinates outside the board return SymbolOutOfView.
type View interface {
	ObjectAt(x, y int) byte
}

// Snapshot is an immutable copy of a board's symbols. The zero value is an
// empty 0x0 board.
type Snapshot struct {
	width  int
	height int
	cells  []byte
}

// NewSnapshot builds a snapshot from rows of symbols. Short rows and
// missing rows are padded with empty cells; longer rows are truncated.
func NewSnapshot(width, height int, rows []string) Snapshot {
	s := Snapshot{width: width, height: height, cells: make([]byte, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := SymbolEmpty
			if y < len(rows) && x < len(rows[y]) {
				c = rows[y][x]
			}
			s.cells[y*width+x] = c
		}
	}
	return s
}

// CaptureView copies width x height symbols out of any View.
func CaptureView(v View, width, height int) Snapshot {
	s := Snapshot{width: width, height: height, cells: make([]byte, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			s.cells[y*width+x] = v.ObjectAt(x, y)
		}
	}
	return s
}

// Width returns the number of columns.
func (s Snapshot) Width() int { return s.width }

// Height returns the number of rows.
func (s Snapshot) Height() int { return s.height }

// ObjectAt implements View.
func (s Snapshot) ObjectAt(x, y int) byte {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return SymbolOutOfView
	}
	return s.cells[y*s.width+x]
}

// With returns a copy with one coordinate replaced.
func (s Snapshot) With(x, y int, b byte) Snapshot {
	out := Snapshot{width: s.width, height: s.height, cells: append([]byte(nil), s.cells...)}
	if x >= 0 && y >= 0 && x < s.width && y < s.height {
		out.cells[y*s.width+x] = b
	}
	return out
}

// Row returns row y as a string.
func (s Snapshot) Row(y int) string {
	if y < 0 || y >= s.height {
		return ""
	}
	return string(s.cells[y*s.width : (y+1)*s.width])
}

// Rows returns every row top to bottom.
func (s Snapshot) Rows() []string {
	rows := make([]string, s.height)
	for y := range rows {
		rows[y] = s.Row(y)
	}
	return rows
}

// Equal reports cell-by-cell equality including dimensions.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.width == o.width && s.height == o.height && string(s.cells) == string(o.cells)
}

// Normalized returns a copy with weakened walls shown as plain walls.
func (s Snapshot) Normalized() Snapshot {
	out := Snapshot{width: s.width, height: s.height, cells: append([]byte(nil), s.cells...)}
	for i, c := range out.cells {
		if c == SymbolWeakWall {
			out.cells[i] = SymbolWall
		}
	}
	return out
}

// String renders the snapshot one row per line.
func (s Snapshot) String() string {
	var b strings.Builder
	for y := 0; y < s.height; y++ {
		b.WriteString(s.Row(y))
		b.WriteByte('\n')
	}
	return b.String()
}

// MarshalJSON encodes the snapshot as an array of row strings.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Rows())
}

// UnmarshalJSON decodes an array of equal-length row strings.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	for i, r := range rows {
		if len(r) != width {
			return fmt.Errorf("snapshot row %d has %d cells, expected %d", i, len(r), width)
		}
	}
	*s = NewSnapshot(width, len(rows), rows)
	return nil
}

// Package mapfile reads tank battle map files.
//
// A map file starts with a name line and four header lines
// (MaxSteps=, NumShells=, Rows=, Cols=; spaces are ignored), followed by
// the board rows. Short or missing rows are padded with empty cells.
// Extra rows and columns are dropped and reported as warnings.
package mapfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// ErrMalformed is wrapped by every fatal map error.
var ErrMalformed = errors.New("mapfile: malformed map")

// Map is a parsed map file.
type Map struct {
	Name      string
	File      string
	MaxSteps  int
	NumShells int
	Rows      int
	Cols      int
	Grid      battle.Snapshot
}

// Warning is a recovered problem in a map file.
type Warning struct {
	Row     int
	Message string
}

func (w Warning) String() string {
	return "Error recovered from: " + w.Message
}

// Load reads the map file at path.
func Load(path string) (*Map, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()

	m, warns, err := Read(f)
	if err != nil {
		return nil, warns, fmt.Errorf("%s: %w", path, err)
	}
	m.File = filepath.Base(path)
	return m, warns, nil
}

// Read parses a map from r.
func Read(r io.Reader) (*Map, []Warning, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return strings.TrimRight(sc.Text(), "\r"), true
	}

	name, ok := next()
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, nil, fmt.Errorf("read map: %w", err)
		}
		return nil, nil, fmt.Errorf("%w: missing map name", ErrMalformed)
	}
	m := &Map{Name: name}

	header := []struct {
		key string
		dst *int
		min int
	}{
		{"MaxSteps", &m.MaxSteps, 0},
		{"NumShells", &m.NumShells, 0},
		{"Rows", &m.Rows, 1},
		{"Cols", &m.Cols, 1},
	}
	for _, h := range header {
		text, ok := next()
		if !ok {
			return nil, nil, fmt.Errorf("%w: missing %s", ErrMalformed, h.key)
		}
		v, err := headerValue(text, h.key)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		if v < h.min {
			return nil, nil, fmt.Errorf("%w: line %d: %s must be at least %d, got %d", ErrMalformed, line, h.key, h.min, v)
		}
		*h.dst = v
	}

	var warns []Warning
	rows := make([]string, 0, m.Rows)
	extraRows := 0
	for {
		text, ok := next()
		if !ok {
			break
		}
		if len(rows) >= m.Rows {
			extraRows++
			continue
		}
		row := len(rows)
		if extra := len(text) - m.Cols; extra > 0 {
			warns = append(warns, Warning{Row: row, Message: fmt.Sprintf("Extra %d columns at row %d ignored.", extra, row)})
			text = text[:m.Cols]
		}
		cells := []byte(text)
		for x, c := range cells {
			if !known(c) {
				warns = append(warns, Warning{Row: row, Message: fmt.Sprintf("Unknown character %q at row %d column %d treated as empty.", c, row, x)})
				cells[x] = battle.SymbolEmpty
			}
		}
		rows = append(rows, string(cells))
	}
	if err := sc.Err(); err != nil {
		return nil, warns, fmt.Errorf("read map: %w", err)
	}
	if extraRows > 0 {
		warns = append(warns, Warning{Row: m.Rows, Message: fmt.Sprintf("Extra %d rows beyond declared height ignored.", extraRows)})
	}

	m.Grid = battle.NewSnapshot(m.Cols, m.Rows, rows)
	return m, warns, nil
}

func headerValue(text, key string) (int, error) {
	compact := strings.ReplaceAll(text, " ", "")
	rest, ok := strings.CutPrefix(compact, key+"=")
	if !ok {
		return 0, fmt.Errorf("expected %s=<n>, got %q", key, text)
	}
	v, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", key, rest)
	}
	return v, nil
}

// known reports whether c may appear on an initial board.
func known(c byte) bool {
	switch c {
	case battle.SymbolEmpty, battle.SymbolWall, battle.SymbolMine, '1', '2':
		return true
	}
	return false
}

// TankCounts returns how many tanks each player starts with.
func (m *Map) TankCounts() [2]int {
	var counts [2]int
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			switch m.Grid.ObjectAt(x, y) {
			case '1':
				counts[0]++
			case '2':
				counts[1]++
			}
		}
	}
	return counts
}

// Game builds a battle.Game for this map and the two sides.
func (m *Map) Game(p1, p2 battle.Side) battle.Game {
	return battle.Game{
		Width:     m.Cols,
		Height:    m.Rows,
		Map:       m.Grid,
		MapName:   m.Name,
		MaxSteps:  m.MaxSteps,
		NumShells: m.NumShells,
		Player1:   p1,
		Player2:   p2,
	}
}

// WriteWarnings writes one line per warning.
func WriteWarnings(w io.Writer, warns []Warning) error {
	for _, warn := range warns {
		if _, err := fmt.Fprintln(w, warn.String()); err != nil {
			return err
		}
	}
	return nil
}

// List returns the regular, non-hidden files in dir sorted by name. Every
// file in a maps folder is treated as a map.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps folder: %w", err)
	}
	var out []string
	for _, de := range entries {
		if !de.Type().IsRegular() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		out = append(out, filepath.Join(dir, de.Name()))
	}
	return out, nil
}

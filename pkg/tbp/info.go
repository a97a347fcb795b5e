package tbp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// Info is the battle info exchanged over the wire. It is also the
// BattleInfo value that Serve hands to a bot's tank algorithm.
type Info struct {
	Width    int
	Height   int
	X, Y     int
	AmmoHint int
	Rows     []string
}

// NewInfo captures a view and locates the requesting tank by its self
// marker. X and Y are -1 when no marker is present.
func NewInfo(view battle.View, width, height, ammoHint int) *Info {
	snap := battle.CaptureView(view, width, height)
	info := &Info{Width: width, Height: height, X: -1, Y: -1, AmmoHint: ammoHint, Rows: snap.Rows()}
	for y, row := range info.Rows {
		if x := strings.IndexByte(row, battle.SymbolSelf); x >= 0 {
			info.X, info.Y = x, y
			break
		}
	}
	return info
}

// View returns the info rows as a battle.View.
func (i *Info) View() battle.Snapshot {
	return battle.NewSnapshot(i.Width, i.Height, i.Rows)
}

// header formats the "info" command line for session sid.
func (i *Info) header(sid int) string {
	return fmt.Sprintf("info %d %d %d %d %d %d", sid, i.Width, i.Height, i.X, i.Y, i.AmmoHint)
}

// parseInfoHeader parses "info <sid> <w> <h> <x> <y> <ammoHint>".
func parseInfoHeader(line string) (int, *Info, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 7 || tokens[0] != "info" {
		return 0, nil, fmt.Errorf("tbp: malformed info line %q", line)
	}
	nums := make([]int, 6)
	for i, tok := range tokens[1:] {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, nil, fmt.Errorf("tbp: malformed info line %q: %w", line, err)
		}
		nums[i] = n
	}
	if nums[1] < 0 || nums[2] < 0 {
		return 0, nil, fmt.Errorf("tbp: negative dimensions in %q", line)
	}
	return nums[0], &Info{
		Width:    nums[1],
		Height:   nums[2],
		X:        nums[3],
		Y:        nums[4],
		AmmoHint: nums[5],
	}, nil
}

// parseSessionLine parses "<verb> <sid> [int...]" lines and returns the
// numeric arguments.
func parseSessionLine(line string, verb string, argc int) ([]int, error) {
	tokens := strings.Fields(line)
	if len(tokens) != argc+1 || tokens[0] != verb {
		return nil, fmt.Errorf("tbp: malformed %s line %q", verb, line)
	}
	out := make([]int, argc)
	for i, tok := range tokens[1:] {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("tbp: malformed %s line %q: %w", verb, line, err)
		}
		out[i] = n
	}
	return out, nil
}

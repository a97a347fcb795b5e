package tbp

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// AmmoReporter is implemented by bot algorithms that track their own ammo.
// Serve answers info requests with the reported value, or with the host's
// hint otherwise.
type AmmoReporter interface {
	Ammo() int
}

// Serve runs the bot side of the protocol until "quit" or end of input.
// newTank is called for every "new" request; the resulting algorithm
// receives *Info values through UpdateBattleInfo.
func Serve(r io.Reader, w io.Writer, name string, newTank battle.TankAlgorithmFactory) error {
	scanner := bufio.NewScanner(r)
	out := bufio.NewWriter(w)
	reply := func(format string, args ...any) error {
		fmt.Fprintf(out, format+"\n", args...)
		return out.Flush()
	}

	tanks := make(map[int]battle.TankAlgorithm)
	for scanner.Scan() {
		line := scanner.Text()
		var err error
		switch {
		case line == "tbp":
			fmt.Fprintf(out, "id name %s\n", name)
			err = reply("tbpok")
		case line == "isready":
			err = reply("readyok")
		case line == "quit":
			return nil
		case strings.HasPrefix(line, "new "):
			args, perr := parseSessionLine(line, "new", 3)
			if perr != nil {
				return perr
			}
			tanks[args[0]] = newTank(args[1], args[2])
		case strings.HasPrefix(line, "free "):
			args, perr := parseSessionLine(line, "free", 1)
			if perr != nil {
				return perr
			}
			delete(tanks, args[0])
		case strings.HasPrefix(line, "action "):
			args, perr := parseSessionLine(line, "action", 1)
			if perr != nil {
				return perr
			}
			action := battle.DoNothing
			if t := tanks[args[0]]; t != nil {
				action = t.Action()
			}
			err = reply("action %d %s", args[0], action)
		case strings.HasPrefix(line, "info "):
			sid, info, perr := parseInfoHeader(line)
			if perr != nil {
				return perr
			}
			info.Rows = make([]string, 0, info.Height)
			for len(info.Rows) < info.Height && scanner.Scan() {
				info.Rows = append(info.Rows, strings.TrimPrefix(scanner.Text(), "row "))
			}
			ammo := info.AmmoHint
			if t := tanks[sid]; t != nil {
				t.UpdateBattleInfo(info)
				if ar, ok := t.(AmmoReporter); ok {
					ammo = ar.Ammo()
				}
			}
			err = reply("ammo %d %d", sid, ammo)
		}
		if err != nil {
			return fmt.Errorf("tbp: write reply: %w", err)
		}
	}
	return scanner.Err()
}

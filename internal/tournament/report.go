package tournament

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// TimestampLayout names report files (YYYYMMDD_HHMMSS).
const TimestampLayout = "20060102_150405"

// WriteComparative renders a comparative report: the three header lines,
// a blank line, then per group the game manager names, the winner and
// reason, the round count, a blank line and the final board.
func WriteComparative(w io.Writer, rep *ComparativeReport) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "game_map=%s\n", rep.Map)
	fmt.Fprintf(bw, "algorithm1=%s\n", rep.Algorithm1)
	fmt.Fprintf(bw, "algorithm2=%s\n", rep.Algorithm2)
	for i, g := range rep.Groups {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString("\n")
		fmt.Fprintln(bw, strings.Join(g.GameManagers, ", "))
		fmt.Fprintf(bw, "Winner: %d, Reason: %s\n", g.Result.Winner, g.Result.Reason)
		fmt.Fprintf(bw, "%d\n\n", g.Result.Rounds)
		bw.WriteString(g.Result.Board.Normalized().String())
	}
	return bw.Flush()
}

// WriteCompetitive renders a competitive report: the two header lines, a
// blank line, then one "name score" line per participant.
func WriteCompetitive(w io.Writer, rep *CompetitiveReport) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "game_maps_folder=%s\n", rep.MapsFolder)
	fmt.Fprintf(bw, "game_manager=%s\n", rep.GameManager)
	bw.WriteString("\n")
	for _, s := range rep.Standings {
		fmt.Fprintf(bw, "%s %d\n", s.Name, s.Score)
	}
	return bw.Flush()
}

// SaveReport writes a report to dir/<prefix>_<timestamp>.txt. When the file
// cannot be created the report goes to fallback instead and the returned
// path is empty.
func SaveReport(dir, prefix string, now time.Time, fallback io.Writer, write func(io.Writer) error) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", prefix, now.Format(TimestampLayout)))
	f, err := os.Create(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to create report file, printing to stdout")
		return "", write(fallback)
	}
	if err := write(f); err != nil {
		f.Close()
		return path, fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return path, fmt.Errorf("close report: %w", err)
	}
	return path, nil
}

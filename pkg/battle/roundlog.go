package battle

import (
	"fmt"
	"io"
	"strings"
)

// roundLog writes the optional per-round action log. A nil writer turns
// every call into a no-op.
type roundLog struct {
	w io.Writer
}

func newRoundLog(w io.Writer) *roundLog {
	return &roundLog{w: w}
}

func (l *roundLog) round(tanks []*tank, requests []Action, steps []Step) {
	if l.w == nil {
		return
	}
	parts := make([]string, len(tanks))
	for i, t := range tanks {
		if !t.alive && t.turnsDead > 0 {
			parts[i] = "killed"
			continue
		}
		var b strings.Builder
		b.WriteString(requests[i].String())
		if !steps[i].Accepted {
			b.WriteString(" (ignored)")
		}
		if !t.alive {
			b.WriteString(" (killed)")
		}
		parts[i] = b.String()
	}
	l.line(strings.Join(parts, ", "))
}

func (l *roundLog) line(s string) {
	if l.w == nil {
		return
	}
	fmt.Fprintln(l.w, s)
}

package tournament

import (
	"sort"
	"sync"

	"github.com/ItayH27/tanks-game-simulation/internal/model"
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// Points per fixture.
const (
	WinPoints = 3
	TiePoints = 1
)

// Group is a set of game managers that produced equivalent results.
type Group struct {
	GameManagers []string      `json:"game_managers"`
	Result       battle.Result `json:"result"`
}

// GroupOutcomes groups finished outcomes by battle.Result.Equivalent.
// Groups come back in ascending size; equal sizes keep the order in which
// each group was first seen. Skipped outcomes are ignored.
func GroupOutcomes(outcomes []Outcome) []Group {
	var groups []Group
	for _, o := range outcomes {
		if o.Skipped() {
			continue
		}
		placed := false
		for i := range groups {
			if groups[i].Result.Equivalent(o.Result) {
				groups[i].GameManagers = append(groups[i].GameManagers, o.GameManager)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, Group{GameManagers: []string{o.GameManager}, Result: o.Result})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].GameManagers) < len(groups[j].GameManagers)
	})
	return groups
}

// Scoreboard accumulates competition points. It is safe for concurrent use.
type Scoreboard struct {
	mu     sync.Mutex
	scores map[string]int
}

// NewScoreboard creates a scoreboard listing every participant at zero.
func NewScoreboard(names []string) *Scoreboard {
	s := &Scoreboard{scores: make(map[string]int, len(names))}
	for _, n := range names {
		s.scores[n] = 0
	}
	return s
}

// Points returns the points a result awards: 3 to the winner, 1 to each
// side on a tie, nothing to the loser.
func Points(name1, name2 string, winner int) []model.Standing {
	switch winner {
	case 1:
		return []model.Standing{{Name: name1, Score: WinPoints}}
	case 2:
		return []model.Standing{{Name: name2, Score: WinPoints}}
	default:
		return []model.Standing{{Name: name1, Score: TiePoints}, {Name: name2, Score: TiePoints}}
	}
}

// Record adds the points of one result and returns them.
func (s *Scoreboard) Record(name1, name2 string, winner int) []model.Standing {
	pts := Points(name1, name2, winner)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pts {
		s.scores[p.Name] += p.Score
	}
	return pts
}

// Standings returns totals by descending score, ties by name.
func (s *Scoreboard) Standings() []model.Standing {
	s.mu.Lock()
	out := make([]model.Standing, 0, len(s.scores))
	for name, score := range s.scores {
		out = append(out, model.Standing{Name: name, Score: score})
	}
	s.mu.Unlock()
	model.SortStandings(out)
	return out
}

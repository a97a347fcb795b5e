package tournament

// Fixture is one scheduled game. Paths are module or map file paths as
// given by the caller.
type Fixture struct {
	Index       int
	Map         string
	GameManager string
	Algorithm1  string
	Algorithm2  string
}

// ComparativeFixtures schedules the algorithm pair once against every game
// manager on a single map.
func ComparativeFixtures(mapPath string, gameManagers []string, algorithm1, algorithm2 string) []Fixture {
	out := make([]Fixture, 0, len(gameManagers))
	for i, gm := range gameManagers {
		out = append(out, Fixture{
			Index:       i,
			Map:         mapPath,
			GameManager: gm,
			Algorithm1:  algorithm1,
			Algorithm2:  algorithm2,
		})
	}
	return out
}

// RoundRobin schedules competitive fixtures. Map k plays pairing round
// k mod (N-1): algorithm i meets algorithm (i+1+round) mod N. When N is
// even, the round where every pair is reached from both sides
// (round N/2-1) schedules each pair once. Fewer than two algorithms
// produce no fixtures.
func RoundRobin(maps, algorithms []string, gameManager string) []Fixture {
	n := len(algorithms)
	if n < 2 {
		return nil
	}
	var out []Fixture
	for k, m := range maps {
		round := k % (n - 1)
		mirrored := n%2 == 0 && round == n/2-1
		for i := 0; i < n; i++ {
			j := (i + 1 + round) % n
			if mirrored && i > j {
				continue
			}
			out = append(out, Fixture{
				Index:       len(out),
				Map:         m,
				GameManager: gameManager,
				Algorithm1:  algorithms[i],
				Algorithm2:  algorithms[j],
			})
		}
	}
	return out
}

// Usage counts how many fixture sides reference each algorithm path. An
// algorithm playing both sides of a fixture counts twice.
func Usage(fixtures []Fixture) map[string]int {
	out := make(map[string]int)
	for _, f := range fixtures {
		out[f.Algorithm1]++
		out[f.Algorithm2]++
	}
	return out
}

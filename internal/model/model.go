package model

import (
	"sort"
	"time"
)

// Tournament modes.
const (
	ModeComparative = "comparative"
	ModeCompetition = "competition"
)

// Tournament statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Tournament is one CLI run: a comparative or competitive batch of games.
type Tournament struct {
	ID          string     `json:"id"`
	Mode        string     `json:"mode"`
	Status      string     `json:"status"`
	GameManager string     `json:"game_manager,omitempty"`
	MapsFolder  string     `json:"game_maps_folder,omitempty"`
	Map         string     `json:"game_map,omitempty"`
	Algorithm1  string     `json:"algorithm1,omitempty"`
	Algorithm2  string     `json:"algorithm2,omitempty"`
	Workers     int        `json:"num_threads"`
	Fixtures    int        `json:"fixtures"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// FixtureRecord is the stored outcome of one scheduled game.
type FixtureRecord struct {
	TournamentID string    `json:"tournament_id"`
	Index        int       `json:"index"`
	Map          string    `json:"map"`
	Algorithm1   string    `json:"algorithm1"`
	Algorithm2   string    `json:"algorithm2"`
	GameManager  string    `json:"game_manager"`
	Skipped      bool      `json:"skipped"`
	Error        string    `json:"error,omitempty"`
	Winner       int       `json:"winner"`
	Reason       string    `json:"reason,omitempty"`
	Rounds       int       `json:"rounds"`
	Remaining1   int       `json:"remaining1"`
	Remaining2   int       `json:"remaining2"`
	Board        []string  `json:"board,omitempty"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Standing is one participant's total score.
type Standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// SortStandings orders standings by descending score, then by name.
func SortStandings(s []Standing) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].Name < s[j].Name
	})
}

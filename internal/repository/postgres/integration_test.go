//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ItayH27/tanks-game-simulation/internal/model"
	"github.com/ItayH27/tanks-game-simulation/internal/testutil"
)

var testDB *sql.DB

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

func createTestTournament(t *testing.T, repo *TournamentRepo, id string) *model.Tournament {
	t.Helper()
	tour := &model.Tournament{
		ID:          id,
		Mode:        model.ModeCompetition,
		GameManager: "builtin:standard",
		MapsFolder:  "maps",
		Workers:     4,
		Fixtures:    6,
	}
	if err := repo.Create(context.Background(), tour); err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tour
}

func TestTournamentCreateAndFind(t *testing.T) {
	setup(t)
	repo := NewTournamentRepo(testDB)

	created := createTestTournament(t, repo, "t-1")
	if created.Status != model.StatusRunning {
		t.Fatalf("expected running status, got %s", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	found, err := repo.FindByID(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil {
		t.Fatal("expected tournament, got nil")
	}
	if found.Mode != model.ModeCompetition || found.Workers != 4 || found.Fixtures != 6 {
		t.Fatalf("unexpected tournament %+v", found)
	}
	if found.FinishedAt != nil {
		t.Fatal("expected finished_at to be nil")
	}
}

func TestTournamentFindMissing(t *testing.T) {
	setup(t)
	repo := NewTournamentRepo(testDB)

	found, err := repo.FindByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil, got %+v", found)
	}
}

func TestTournamentFinish(t *testing.T) {
	setup(t)
	repo := NewTournamentRepo(testDB)
	createTestTournament(t, repo, "t-2")

	if err := repo.Finish(context.Background(), "t-2", model.StatusFinished); err != nil {
		t.Fatalf("finish: %v", err)
	}
	found, _ := repo.FindByID(context.Background(), "t-2")
	if found.Status != model.StatusFinished {
		t.Fatalf("expected finished, got %s", found.Status)
	}
	if found.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}
}

func TestFixtureSaveAndList(t *testing.T) {
	setup(t)
	repo := NewTournamentRepo(testDB)
	createTestTournament(t, repo, "t-3")
	ctx := context.Background()

	fixtures := []model.FixtureRecord{
		{TournamentID: "t-3", Index: 1, Map: "b.txt", Algorithm1: "chaser", Algorithm2: "sentry",
			GameManager: "standard", Winner: 1, Reason: "ALL_TANKS_DEAD", Rounds: 12, Remaining1: 2,
			Board: []string{"1  ", "   "}},
		{TournamentID: "t-3", Index: 0, Map: "a.txt", Algorithm1: "chaser", Algorithm2: "sentry",
			GameManager: "standard", Skipped: true, Error: "malformed map"},
	}
	for _, f := range fixtures {
		if err := repo.SaveFixture(ctx, f); err != nil {
			t.Fatalf("save fixture: %v", err)
		}
	}

	got, err := repo.ListFixtures(ctx, "t-3")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(got))
	}
	if got[0].Index != 0 || !got[0].Skipped || len(got[0].Board) != 0 {
		t.Fatalf("unexpected first fixture %+v", got[0])
	}
	if got[1].Winner != 1 || got[1].Rounds != 12 || len(got[1].Board) != 2 || got[1].Board[0] != "1  " {
		t.Fatalf("unexpected second fixture %+v", got[1])
	}

	// Re-saving the same index overwrites the outcome.
	fixtures[1].Skipped = false
	fixtures[1].Winner = 2
	if err := repo.SaveFixture(ctx, fixtures[1]); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _ = repo.ListFixtures(ctx, "t-3")
	if got[0].Skipped || got[0].Winner != 2 {
		t.Fatalf("expected overwritten fixture, got %+v", got[0])
	}
}

func TestStandingsReplace(t *testing.T) {
	setup(t)
	repo := NewTournamentRepo(testDB)
	createTestTournament(t, repo, "t-4")
	ctx := context.Background()

	first := []model.Standing{{Name: "sentry", Score: 3}, {Name: "chaser", Score: 6}}
	if err := repo.SaveStandings(ctx, "t-4", first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := []model.Standing{{Name: "bot", Score: 4}, {Name: "alpha", Score: 4}, {Name: "chaser", Score: 1}}
	if err := repo.SaveStandings(ctx, "t-4", second); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := repo.Standings(ctx, "t-4")
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	want := []string{"alpha", "bot", "chaser"}
	if len(got) != len(want) {
		t.Fatalf("expected %d standings, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
}

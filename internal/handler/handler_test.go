package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ItayH27/tanks-game-simulation/internal/auth"
	"github.com/ItayH27/tanks-game-simulation/internal/model"
)

// mockTournamentRepo is an in-memory TournamentRepository.
type mockTournamentRepo struct {
	tournaments map[string]*model.Tournament
	fixtures    map[string][]model.FixtureRecord
	standings   map[string][]model.Standing
	err         error
}

func newMockTournamentRepo() *mockTournamentRepo {
	return &mockTournamentRepo{
		tournaments: make(map[string]*model.Tournament),
		fixtures:    make(map[string][]model.FixtureRecord),
		standings:   make(map[string][]model.Standing),
	}
}

func (m *mockTournamentRepo) Create(_ context.Context, t *model.Tournament) error {
	m.tournaments[t.ID] = t
	return nil
}

func (m *mockTournamentRepo) FindByID(_ context.Context, id string) (*model.Tournament, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tournaments[id], nil
}

func (m *mockTournamentRepo) Finish(_ context.Context, id, status string) error {
	if t, ok := m.tournaments[id]; ok {
		t.Status = status
	}
	return nil
}

func (m *mockTournamentRepo) SaveFixture(_ context.Context, f model.FixtureRecord) error {
	m.fixtures[f.TournamentID] = append(m.fixtures[f.TournamentID], f)
	return nil
}

func (m *mockTournamentRepo) ListFixtures(_ context.Context, id string) ([]model.FixtureRecord, error) {
	return m.fixtures[id], nil
}

func (m *mockTournamentRepo) SaveStandings(_ context.Context, id string, s []model.Standing) error {
	m.standings[id] = s
	return nil
}

func (m *mockTournamentRepo) Standings(_ context.Context, id string) ([]model.Standing, error) {
	return m.standings[id], nil
}

// mockProgressCache is an in-memory ProgressCache.
type mockProgressCache struct {
	progress  map[string]map[string]int64
	standings map[string][]model.Standing
}

func newMockProgressCache() *mockProgressCache {
	return &mockProgressCache{
		progress:  make(map[string]map[string]int64),
		standings: make(map[string][]model.Standing),
	}
}

func (m *mockProgressCache) PublishEvent(context.Context, string, []byte) error { return nil }

func (m *mockProgressCache) SetTotal(_ context.Context, id string, total int) error {
	m.progress[id] = map[string]int64{"total": int64(total)}
	return nil
}

func (m *mockProgressCache) IncrProgress(_ context.Context, id, field string) error {
	if m.progress[id] == nil {
		m.progress[id] = make(map[string]int64)
	}
	m.progress[id][field]++
	return nil
}

func (m *mockProgressCache) Progress(_ context.Context, id string) (map[string]int64, error) {
	return m.progress[id], nil
}

func (m *mockProgressCache) AddScore(_ context.Context, id, name string, points int) error {
	for i := range m.standings[id] {
		if m.standings[id][i].Name == name {
			m.standings[id][i].Score += points
			return nil
		}
	}
	m.standings[id] = append(m.standings[id], model.Standing{Name: name, Score: points})
	return nil
}

func (m *mockProgressCache) Standings(_ context.Context, id string) ([]model.Standing, error) {
	out := append([]model.Standing(nil), m.standings[id]...)
	model.SortStandings(out)
	return out, nil
}

func (m *mockProgressCache) DeleteTournament(_ context.Context, id string) error {
	delete(m.progress, id)
	delete(m.standings, id)
	return nil
}

func seedTournament(repo *mockTournamentRepo) {
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.tournaments["t-1"] = &model.Tournament{
		ID:          "t-1",
		Mode:        model.ModeCompetition,
		Status:      model.StatusFinished,
		GameManager: "standard",
		MapsFolder:  "maps",
		Workers:     2,
		Fixtures:    1,
		FinishedAt:  &finished,
	}
	repo.fixtures["t-1"] = []model.FixtureRecord{{
		TournamentID: "t-1",
		Map:          "arena",
		Algorithm1:   "a",
		Algorithm2:   "b",
		GameManager:  "standard",
		Winner:       1,
		Reason:       "AllTanksDead",
		Rounds:       12,
	}}
	repo.standings["t-1"] = []model.Standing{{Name: "a", Score: 3}, {Name: "b", Score: 0}}
}

func newRequest(method, target, tournamentID string, ctxTournament *string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.SetPathValue("id", tournamentID)
	if ctxTournament != nil {
		req = req.WithContext(auth.SetClaimsForTest(req.Context(), "viewer-1", *ctxTournament))
	}
	return req
}

func scope(id string) *string { return &id }

func TestGetTournament(t *testing.T) {
	repo := newMockTournamentRepo()
	seedTournament(repo)
	h := NewTournamentHandler(repo, nil, nil)

	rec := httptest.NewRecorder()
	h.GetTournament(rec, newRequest(http.MethodGet, "/api/v1/tournaments/t-1", "t-1", scope("")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		ID      string                `json:"id"`
		Mode    string                `json:"mode"`
		Results []model.FixtureRecord `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != "t-1" || body.Mode != model.ModeCompetition {
		t.Errorf("unexpected tournament: %+v", body)
	}
	if len(body.Results) != 1 || body.Results[0].Reason != "AllTanksDead" {
		t.Errorf("unexpected results: %+v", body.Results)
	}
}

func TestGetTournamentNotFound(t *testing.T) {
	h := NewTournamentHandler(newMockTournamentRepo(), nil, nil)
	rec := httptest.NewRecorder()
	h.GetTournament(rec, newRequest(http.MethodGet, "/api/v1/tournaments/nope", "nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetTournamentRepoError(t *testing.T) {
	repo := newMockTournamentRepo()
	repo.err = errors.New("connection refused")
	h := NewTournamentHandler(repo, nil, nil)
	rec := httptest.NewRecorder()
	h.GetTournament(rec, newRequest(http.MethodGet, "/api/v1/tournaments/t-1", "t-1", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestGetTournamentWithoutStore(t *testing.T) {
	h := NewTournamentHandler(nil, nil, nil)
	rec := httptest.NewRecorder()
	h.GetTournament(rec, newRequest(http.MethodGet, "/api/v1/tournaments/t-1", "t-1", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestGetTournamentForbiddenForOtherScope(t *testing.T) {
	repo := newMockTournamentRepo()
	seedTournament(repo)
	h := NewTournamentHandler(repo, nil, nil)
	rec := httptest.NewRecorder()
	h.GetTournament(rec, newRequest(http.MethodGet, "/api/v1/tournaments/t-1", "t-1", scope("t-2")))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestGetStandingsLive(t *testing.T) {
	cache := newMockProgressCache()
	ctx := context.Background()
	cache.SetTotal(ctx, "t-live", 6)
	cache.IncrProgress(ctx, "t-live", "finished")
	cache.AddScore(ctx, "t-live", "b", 1)
	cache.AddScore(ctx, "t-live", "a", 3)
	h := NewTournamentHandler(newMockTournamentRepo(), cache, nil)

	rec := httptest.NewRecorder()
	h.GetStandings(rec, newRequest(http.MethodGet, "/api/v1/tournaments/t-live/standings", "t-live", scope("t-live")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body standingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Live {
		t.Error("expected live standings")
	}
	if body.Progress["total"] != 6 || body.Progress["finished"] != 1 {
		t.Errorf("unexpected progress: %v", body.Progress)
	}
	if len(body.Standings) != 2 || body.Standings[0].Name != "a" {
		t.Errorf("expected a first, got %+v", body.Standings)
	}
}

func TestGetStandingsFallsBackToStore(t *testing.T) {
	repo := newMockTournamentRepo()
	seedTournament(repo)
	h := NewTournamentHandler(repo, newMockProgressCache(), nil)

	rec := httptest.NewRecorder()
	h.GetStandings(rec, newRequest(http.MethodGet, "/api/v1/tournaments/t-1/standings", "t-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body standingsResponse
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Live {
		t.Error("finished tournament should not be live")
	}
	if len(body.Standings) != 2 || body.Standings[0].Score != 3 {
		t.Errorf("unexpected standings: %+v", body.Standings)
	}
}

func TestGetStandingsUnknown(t *testing.T) {
	h := NewTournamentHandler(newMockTournamentRepo(), newMockProgressCache(), nil)
	rec := httptest.NewRecorder()
	h.GetStandings(rec, newRequest(http.MethodGet, "/api/v1/tournaments/x/standings", "x", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreateViewerToken(t *testing.T) {
	jwtMgr := auth.NewJWTManager("secret")
	h := NewTournamentHandler(nil, nil, jwtMgr)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tournaments/t-1/viewers", strings.NewReader(`{"viewer_id":"screen-3"}`))
	req.SetPathValue("id", "t-1")
	req = req.WithContext(auth.SetClaimsForTest(req.Context(), "operator", ""))
	rec := httptest.NewRecorder()
	h.CreateViewerToken(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	claims, err := jwtMgr.ValidateToken(body.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.ViewerID != "screen-3" || claims.Tournament != "t-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if body.ExpiresIn != int(auth.DefaultViewerExpiry.Seconds()) {
		t.Errorf("unexpected expiry %d", body.ExpiresIn)
	}
}

func TestCreateViewerTokenRejectsScopedCaller(t *testing.T) {
	h := NewTournamentHandler(nil, nil, auth.NewJWTManager("secret"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tournaments/t-1/viewers", strings.NewReader(`{"viewer_id":"x"}`))
	req.SetPathValue("id", "t-1")
	req = req.WithContext(auth.SetClaimsForTest(req.Context(), "viewer-1", "t-1"))
	rec := httptest.NewRecorder()
	h.CreateViewerToken(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCreateViewerTokenBadBody(t *testing.T) {
	h := NewTournamentHandler(nil, nil, auth.NewJWTManager("secret"))
	for _, body := range []string{"not json", `{"viewer_id":""}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tournaments/t-1/viewers", strings.NewReader(body))
		req.SetPathValue("id", "t-1")
		req = req.WithContext(auth.SetClaimsForTest(req.Context(), "operator", ""))
		rec := httptest.NewRecorder()
		h.CreateViewerToken(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

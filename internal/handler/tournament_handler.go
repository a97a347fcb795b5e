package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ItayH27/tanks-game-simulation/internal/auth"
	"github.com/ItayH27/tanks-game-simulation/internal/model"
	"github.com/ItayH27/tanks-game-simulation/internal/repository"
)

// TournamentHandler serves stored tournament results and live progress.
type TournamentHandler struct {
	repo   repository.TournamentRepository
	cache  repository.ProgressCache
	jwtMgr *auth.JWTManager
}

// NewTournamentHandler creates a TournamentHandler. Either store may be nil
// when the matching backend is not configured.
func NewTournamentHandler(repo repository.TournamentRepository, cache repository.ProgressCache, jwtMgr *auth.JWTManager) *TournamentHandler {
	return &TournamentHandler{repo: repo, cache: cache, jwtMgr: jwtMgr}
}

type tournamentResponse struct {
	*model.Tournament
	Results []model.FixtureRecord `json:"results"`
}

type standingsResponse struct {
	TournamentID string           `json:"tournament_id"`
	Live         bool             `json:"live"`
	Progress     map[string]int64 `json:"progress,omitempty"`
	Standings    []model.Standing `json:"standings"`
}

type viewerRequest struct {
	ViewerID string `json:"viewer_id"`
}

// allowed writes 403 and reports false when the caller's token is scoped
// to a different tournament.
func allowed(w http.ResponseWriter, r *http.Request, tournamentID string) bool {
	if c := auth.ClaimsFromContext(r.Context()); c != nil && !c.CanView(tournamentID) {
		writeError(w, http.StatusForbidden, "token does not cover this tournament")
		return false
	}
	return true
}

// GetTournament handles GET /api/v1/tournaments/{id}.
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !allowed(w, r, id) {
		return
	}
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "tournament store not configured")
		return
	}

	t, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", id).Msg("Failed to load tournament")
		writeError(w, http.StatusInternalServerError, "failed to load tournament")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "tournament not found")
		return
	}

	fixtures, err := h.repo.ListFixtures(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", id).Msg("Failed to load fixtures")
		writeError(w, http.StatusInternalServerError, "failed to load fixtures")
		return
	}
	if fixtures == nil {
		fixtures = []model.FixtureRecord{}
	}
	writeJSON(w, http.StatusOK, tournamentResponse{Tournament: t, Results: fixtures})
}

// GetStandings handles GET /api/v1/tournaments/{id}/standings. Live scores
// come from the progress cache; once a tournament has no live entry the
// stored standings are returned instead.
func (h *TournamentHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !allowed(w, r, id) {
		return
	}
	ctx := r.Context()
	resp := standingsResponse{TournamentID: id, Standings: []model.Standing{}}

	if h.cache != nil {
		counters, err := h.cache.Progress(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("tournamentId", id).Msg("Failed to read progress")
			writeError(w, http.StatusInternalServerError, "failed to read progress")
			return
		}
		if len(counters) > 0 {
			standings, err := h.cache.Standings(ctx, id)
			if err != nil {
				log.Error().Err(err).Str("tournamentId", id).Msg("Failed to read live standings")
				writeError(w, http.StatusInternalServerError, "failed to read standings")
				return
			}
			resp.Live = true
			resp.Progress = counters
			if standings != nil {
				resp.Standings = standings
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	if h.repo == nil {
		writeError(w, http.StatusNotFound, "tournament not found")
		return
	}
	t, err := h.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", id).Msg("Failed to load tournament")
		writeError(w, http.StatusInternalServerError, "failed to load tournament")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "tournament not found")
		return
	}
	standings, err := h.repo.Standings(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", id).Msg("Failed to load standings")
		writeError(w, http.StatusInternalServerError, "failed to load standings")
		return
	}
	if standings != nil {
		resp.Standings = standings
	}
	if t.Status == model.StatusRunning {
		resp.Live = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateViewerToken handles POST /api/v1/tournaments/{id}/viewers. Only an
// unscoped token may mint tokens, and minted tokens are always scoped.
func (h *TournamentHandler) CreateViewerToken(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil || claims.Tournament != "" {
		writeError(w, http.StatusForbidden, "scoped tokens cannot issue viewer tokens")
		return
	}

	var req viewerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ViewerID == "" {
		writeError(w, http.StatusBadRequest, "viewer_id is required")
		return
	}

	token, err := h.jwtMgr.GenerateViewerToken(req.ViewerID, id)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", id).Msg("Failed to issue viewer token")
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":      token,
		"expires_in": int(h.jwtMgr.Expiry().Seconds()),
	})
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

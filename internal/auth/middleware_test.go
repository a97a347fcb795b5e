package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddlewareValidToken(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	token, _ := mgr.GenerateViewerToken("viewer-42", "t-9")

	var capturedViewerID, capturedTournament string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedViewerID = ViewerIDFromContext(r.Context())
		if c := ClaimsFromContext(r.Context()); c != nil {
			capturedTournament = c.Tournament
		}
		w.WriteHeader(http.StatusOK)
	})

	mw := Middleware(mgr)
	handler := mw(inner)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if capturedViewerID != "viewer-42" {
		t.Errorf("expected viewer_id=viewer-42, got %s", capturedViewerID)
	}
	if capturedTournament != "t-9" {
		t.Errorf("expected tournament=t-9, got %s", capturedTournament)
	}
}

func TestMiddlewareRejects(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	expired, _ := mgr.WithExpiry(-time.Minute).GenerateViewerToken("viewer-1", "")
	foreign, _ := NewJWTManager("other-secret").GenerateViewerToken("viewer-1", "")

	handler := Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "Token abc123"},
		{"bearer only", "Bearer"},
		{"empty value", "Bearer "},
		{"garbage token", "Bearer invalid.jwt.token"},
		{"expired token", "Bearer " + expired},
		{"wrong secret", "Bearer " + foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tournaments/t-1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestMiddlewareCaseInsensitiveBearer(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	token, _ := mgr.GenerateViewerToken("viewer-1", "")

	handler := Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tournaments/t-1", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for lowercase bearer, got %d", rec.Code)
	}
}

func TestViewerIDFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if id := ViewerIDFromContext(req.Context()); id != "" {
		t.Errorf("expected empty viewer ID from context without auth, got %s", id)
	}
	if c := ClaimsFromContext(req.Context()); c != nil {
		t.Errorf("expected nil claims, got %+v", c)
	}
}

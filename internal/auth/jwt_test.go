package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateViewerToken(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	token, err := mgr.GenerateViewerToken("viewer-42", "")
	if err != nil {
		t.Fatalf("generate viewer token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.ViewerID != "viewer-42" {
		t.Errorf("expected viewer_id=viewer-42, got %s", claims.ViewerID)
	}
	if claims.Subject != "viewer-42" {
		t.Errorf("expected subject=viewer-42, got %s", claims.Subject)
	}
	if !claims.CanView("any-tournament") {
		t.Error("unscoped token should view every tournament")
	}
}

func TestScopedTokenCanView(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	token, err := mgr.GenerateViewerToken("viewer-1", "t-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !claims.CanView("t-1") {
		t.Error("expected access to t-1")
	}
	if claims.CanView("t-2") {
		t.Error("expected no access to t-2")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	mgr1 := NewJWTManager("secret-one")
	mgr2 := NewJWTManager("secret-two")

	token, err := mgr1.GenerateViewerToken("viewer-1", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = mgr2.ValidateToken(token)
	if err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	_, err := mgr.ValidateToken("not-a-jwt")
	if err == nil {
		t.Error("expected error for garbage token")
	}
	_, err = mgr.ValidateToken("")
	if err == nil {
		t.Error("expected error for empty token")
	}
}

func TestValidateTokenWithoutViewer(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	token, err := mgr.GenerateViewerToken("", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := mgr.ValidateToken(token); err == nil {
		t.Error("expected error for token without viewer id")
	}
}

func TestExpiredToken(t *testing.T) {
	mgr := NewJWTManager("test-secret").WithExpiry(-1 * time.Second)
	token, err := mgr.GenerateViewerToken("viewer-1", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = mgr.ValidateToken(token)
	if err == nil {
		t.Error("expected error for expired token")
	}
}

func TestWithExpiryKeepsSecret(t *testing.T) {
	base := NewJWTManager("test-secret")
	short := base.WithExpiry(time.Minute)
	if short.Expiry() != time.Minute || base.Expiry() != DefaultViewerExpiry {
		t.Fatalf("unexpected expiries %v / %v", short.Expiry(), base.Expiry())
	}
	token, _ := short.GenerateViewerToken("viewer-1", "")
	if _, err := base.ValidateToken(token); err != nil {
		t.Errorf("expected token from copy to validate with base: %v", err)
	}
}

package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("secret", 7, "GATEKEEPER", 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tok, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if uint64(claims["sub"].(float64)) != 7 {
		t.Errorf("sub = %v, want 7", claims["sub"])
	}
	if claims["role"] != "GATEKEEPER" {
		t.Errorf("role = %v, want GATEKEEPER", claims["role"])
	}
	if !at.Exp.After(time.Now()) {
		t.Errorf("expiry should be in the future: %v", at.Exp)
	}
}

func TestRefreshTokensAreUniqueAndHashStable(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	b, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if a.Raw == b.Raw {
		t.Fatal("two refresh tokens must not collide")
	}
	if HashRefreshRaw(a.Raw) != HashRefreshRaw(a.Raw) {
		t.Error("hash must be deterministic")
	}
	if HashRefreshRaw(a.Raw) == HashRefreshRaw(b.Raw) {
		t.Error("different tokens must hash differently")
	}
	if len(HashRefreshRaw(a.Raw)) != 64 {
		t.Errorf("hash should be 64 hex chars, got %d", len(HashRefreshRaw(a.Raw)))
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "s3cret!") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

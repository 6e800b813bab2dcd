package service

import (
	"errors"
	"testing"
)

func TestPlayerTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")

	token, err := svc.GeneratePlayerToken("ROOM01", "player-1")
	if err != nil {
		t.Fatalf("GeneratePlayerToken: %v", err)
	}

	claims, err := svc.ValidatePlayerToken(token)
	if err != nil {
		t.Fatalf("ValidatePlayerToken: %v", err)
	}
	if claims.RoomID != "ROOM01" || claims.PlayerID != "player-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestValidatePlayerTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewAuthService("secret-a").GeneratePlayerToken("ROOM01", "player-1")
	if err != nil {
		t.Fatalf("GeneratePlayerToken: %v", err)
	}

	if _, err := NewAuthService("secret-b").ValidatePlayerToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken across secrets, got %v", err)
	}
}

func TestValidatePlayerTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret")

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := svc.ValidatePlayerToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

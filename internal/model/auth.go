package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are JWT claims for room-scoped player tokens
type PlayerClaims struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

// JoinResponse is returned when a player joins a room
type JoinResponse struct {
	PlayerID string        `json:"playerId"`
	Token    string        `json:"token"`
	Room     *RoomSnapshot `json:"room"`
}

// RoomSnapshot is the public view of a room's current state
type RoomSnapshot struct {
	RoomID      string         `json:"roomId"`
	Phase       GamePhase      `json:"phase"`
	RoundNumber int            `json:"roundNumber"`
	Players     []PlayerPublic `json:"players"`
	Messages    []ChatMessage  `json:"messages"`
	PhaseEndsAt *int64         `json:"phaseEndsAt,omitempty"` // unix seconds
	Duration    int            `json:"duration"`              // seconds, 0 for untimed phases
}

package ai

import (
	"context"

	"moonhollow/internal/model"
)

// Candidate is a selectable target for a vote or night action
type Candidate struct {
	ID   string
	Name string
}

// SeerResult is one remembered investigation outcome
type SeerResult struct {
	TargetName string
	IsWerewolf bool
}

// PlayerContext is everything a decision strategy may look at: the player's
// own identity and secrets plus the public room state.
type PlayerContext struct {
	PlayerID   string
	PlayerName string
	Role       model.Role
	Team       model.Team

	Phase       model.GamePhase
	RoundNumber int

	Alive    []Candidate
	Dead     []Candidate
	Messages []model.ChatMessage

	VoteCounts  map[string]int    // target id -> count, voting phase only
	PlayerNames map[string]string // id -> display name, incl. dead players

	FellowWolves []string // ids of other living werewolves, wolves only
	SeerResults  []SeerResult

	MessagesSent int
	MaxMessages  int
	Notes        string
}

// Strategy makes decisions for one AI player. Implementations must treat a
// failure as "no action": return an error or an empty choice, never block
// beyond the context deadline. The strategy is chosen once at construction
// and shared across players; per-player memory travels in PlayerContext.
type Strategy interface {
	// DecideChat returns a message to send, or empty to stay silent
	DecideChat(ctx context.Context, pc *PlayerContext) (string, error)

	// ChooseVoteTarget picks a day-vote target from the legal candidates
	ChooseVoteTarget(ctx context.Context, pc *PlayerContext, targets []Candidate) (string, error)

	// ChooseNightTarget picks a night-action target from the legal candidates
	ChooseNightTarget(ctx context.Context, pc *PlayerContext, targets []Candidate) (string, error)

	// UpdateNotes rewrites the player's private notes for the next phase
	UpdateNotes(ctx context.Context, pc *PlayerContext) (string, error)
}

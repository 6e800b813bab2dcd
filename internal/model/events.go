package model

// WebSocket event payloads pushed by the server. Private events (role
// assignment, seer results, werewolf tallies) are only ever sent on the
// recipient's own connection.

// PhaseChangedEvent announces a phase transition to the whole room
type PhaseChangedEvent struct {
	Phase       GamePhase `json:"phase"`
	Duration    int       `json:"duration"` // seconds, 0 for untimed phases
	EndsAt      *int64    `json:"endsAt"`   // unix seconds, nil for untimed phases
	RoundNumber int       `json:"roundNumber"`
}

// PlayerEliminatedEvent reports the outcome of a day vote. Eliminated is nil
// when the vote tied or nobody voted.
type PlayerEliminatedEvent struct {
	Eliminated *PlayerReveal `json:"eliminated"`
	Reason     string        `json:"reason"`
}

// NightResultEvent carries the (possibly empty) death list for a night
type NightResultEvent struct {
	Deaths []PlayerReveal `json:"deaths"`
}

// GameStartedEvent is delivered privately to each player at game start
type GameStartedEvent struct {
	Role        Role     `json:"role"`
	Team        Team     `json:"team"`
	WerewolfIDs []string `json:"werewolfIds,omitempty"` // only for werewolves
}

// SeerResultEvent is delivered privately to the seer after night resolution
type SeerResultEvent struct {
	TargetID   string `json:"targetId"`
	TargetName string `json:"targetName"`
	Role       Role   `json:"role"`
}

// GameEndedEvent reveals everyone's role once a team has won
type GameEndedEvent struct {
	Winner  Team           `json:"winner"`
	Players []PlayerReveal `json:"players"`
}

// VoteUpdateEvent carries the current target -> count tally
type VoteUpdateEvent struct {
	Votes map[string]int `json:"votes"`
}

// PlayerJoinedEvent announces a new player to the room
type PlayerJoinedEvent struct {
	PlayerID   string     `json:"playerId"`
	PlayerName string     `json:"playerName"`
	Kind       PlayerKind `json:"kind"`
}

// PlayerLeftEvent announces a departure
type PlayerLeftEvent struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// HostChangedEvent announces a host transfer after the host left
type HostChangedEvent struct {
	NewHostID string `json:"newHostId"`
}

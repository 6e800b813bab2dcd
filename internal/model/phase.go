package model

// GamePhase is the current phase of a room's state machine
type GamePhase string

const (
	PhaseLobby  GamePhase = "lobby"
	PhaseDay    GamePhase = "day"
	PhaseVoting GamePhase = "voting"
	PhaseNight  GamePhase = "night"
	PhaseEnded  GamePhase = "ended"
)

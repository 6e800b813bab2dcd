package game

import "moonhollow/internal/model"

// Event names pushed over the wire
const (
	EventPhaseChanged       = "phase_changed"
	EventPlayerEliminated   = "player_eliminated"
	EventNightResult        = "night_result"
	EventGameStarted        = "game_started"
	EventSeerResult         = "seer_result"
	EventGameEnded          = "game_ended"
	EventVoteUpdate         = "vote_update"
	EventWerewolfVoteUpdate = "werewolf_vote_update"
	EventNewMessage         = "new_message"
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventHostChanged        = "host_changed"
)

// Broadcaster delivers events to connected clients (avoids importing the
// transport layer). BroadcastToPlayer is the private channel: role
// assignments, seer results and werewolf tallies must only ever go through
// it, never through BroadcastToRoom.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event string, payload interface{})
	BroadcastToPlayer(roomID, playerID string, event string, payload interface{})
}

// PhaseListener is notified after each phase entry, strictly after the state
// mutation that constitutes entering the phase. The AI controller hangs off
// this to drive chat and scheduled actions.
type PhaseListener interface {
	OnGameStart(roomID string)
	OnPhaseChange(roomID string, phase model.GamePhase, durationSec int)
}

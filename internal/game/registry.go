package game

import (
	"crypto/rand"
	"fmt"
	"sync"

	"moonhollow/internal/model"
)

// MaxPlayers caps the roster of a single room
const MaxPlayers = 20

// Registry owns the map from room id to room state and the reverse index
// from player to room. It is the only structure shared by operations on
// different rooms, so it has its own lock; per-room state carries its own.
type Registry struct {
	mu          sync.RWMutex
	rooms       map[string]*State
	playerRooms map[string]string // player id -> room id
}

// LeaveResult reports what a leave/disconnect changed
type LeaveResult struct {
	RoomID      string
	PlayerID    string
	PlayerName  string
	NewHostID   string // set when host-ship transferred
	RoomDeleted bool   // set when the last player left
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		rooms:       make(map[string]*State),
		playerRooms: make(map[string]string),
	}
}

// CreateRoom allocates a new empty room and returns its id
func (r *Registry) CreateRoom() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempts := 0; attempts < 10; attempts++ {
		id, err := newRoomID()
		if err != nil {
			return "", err
		}
		if _, taken := r.rooms[id]; taken {
			continue
		}
		r.rooms[id] = NewState(id)
		return id, nil
	}
	return "", fmt.Errorf("failed to generate unique room id")
}

// Room looks up a room by id
func (r *Registry) Room(roomID string) (*State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.rooms[roomID]
	return state, ok
}

// RoomOf returns the room a player currently belongs to
func (r *Registry) RoomOf(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.playerRooms[playerID]
	return roomID, ok
}

// Join adds a player to a room. The first player to join becomes host.
func (r *Registry) Join(roomID, playerID, name string, kind model.PlayerKind) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if state.PlayerCount() >= MaxPlayers {
		return nil, ErrRoomFull
	}

	state.AddPlayer(&model.Player{
		ID:      playerID,
		Name:    name,
		Kind:    kind,
		IsAlive: true,
		IsHost:  state.PlayerCount() == 0,
	})
	r.playerRooms[playerID] = roomID
	return state, nil
}

// Leave removes a player from a room, transferring host-ship to the oldest
// remaining player if needed, and deleting the room when it empties.
func (r *Registry) Leave(roomID, playerID string) (*LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leave(roomID, playerID)
}

// Disconnect removes a player using the reverse index; unknown players
// (e.g. a connection that never joined) yield a nil result, not an error.
func (r *Registry) Disconnect(playerID string) (*LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.playerRooms[playerID]
	if !ok {
		return nil, nil
	}
	return r.leave(roomID, playerID)
}

func (r *Registry) leave(roomID, playerID string) (*LeaveResult, error) {
	state, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	state.mu.Lock()
	p, ok := state.players[playerID]
	if !ok {
		state.mu.Unlock()
		return nil, ErrPlayerNotFound
	}

	result := &LeaveResult{
		RoomID:     roomID,
		PlayerID:   playerID,
		PlayerName: p.Name,
	}
	wasHost := p.IsHost
	state.removePlayer(playerID)

	if len(state.players) == 0 {
		result.RoomDeleted = true
	} else if wasHost {
		newHost := state.players[state.order[0]]
		newHost.IsHost = true
		result.NewHostID = newHost.ID
	}
	state.mu.Unlock()

	delete(r.playerRooms, playerID)
	if result.RoomDeleted {
		delete(r.rooms, roomID)
	}
	return result, nil
}

// DeleteRoom drops a room and its player index entries
func (r *Registry) DeleteRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[roomID]
	if !ok {
		return
	}
	state.mu.Lock()
	for id := range state.players {
		delete(r.playerRooms, id)
	}
	state.mu.Unlock()
	delete(r.rooms, roomID)
}

// RoomCount returns the number of live rooms
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// newRoomID generates a 6-char code from an unambiguous alphabet
func newRoomID() (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	b := make([]byte, codeLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := make([]byte, codeLen)
	for i := range code {
		code[i] = chars[int(b[i])%len(chars)]
	}
	return string(code), nil
}

package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for rooms. It implements
// game.Broadcaster: room-wide events fan out to every connection, private
// events go only to the named player's connection.
type Hub struct {
	playerConns map[string]map[string]*Connection // roomID -> playerID -> conn

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	closeRoom  chan string

	// Called when a player's connection goes away
	onDisconnect func(playerID string)
}

// Connection represents one player's WebSocket connection
type Connection struct {
	RoomID   string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to deliver
type BroadcastMessage struct {
	RoomID   string
	ToPlayer string // Empty means the whole room
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		playerConns: make(map[string]map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		closeRoom:   make(chan string),
	}
	go h.run()
	return h
}

// SetDisconnectHandler registers the callback invoked after a player's
// connection is removed from the hub.
func (h *Hub) SetDisconnectHandler(fn func(playerID string)) {
	h.onDisconnect = fn
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.playerConns[conn.RoomID] == nil {
				h.playerConns[conn.RoomID] = make(map[string]*Connection)
			}
			// A reconnect replaces the old socket
			if existing, ok := h.playerConns[conn.RoomID][conn.PlayerID]; ok {
				close(existing.Send)
			}
			h.playerConns[conn.RoomID][conn.PlayerID] = conn
			h.mu.Unlock()
			log.Printf("Player %s connected to room %s", conn.PlayerID, conn.RoomID)

		case conn := <-h.unregister:
			h.mu.Lock()
			removed := false
			if players, ok := h.playerConns[conn.RoomID]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					close(conn.Send)
					if len(players) == 0 {
						delete(h.playerConns, conn.RoomID)
					}
					removed = true
				}
			}
			h.mu.Unlock()
			if removed {
				log.Printf("Player %s disconnected from room %s", conn.PlayerID, conn.RoomID)
				// Run the callback off the hub loop: it may re-enter the
				// hub (e.g. closing the room when the last player leaves)
				if h.onDisconnect != nil {
					go h.onDisconnect(conn.PlayerID)
				}
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			if players, ok := h.playerConns[msg.RoomID]; ok {
				if msg.ToPlayer != "" {
					if conn, ok := players[msg.ToPlayer]; ok {
						select {
						case conn.Send <- data:
						default:
							// Drop message if buffer full
						}
					}
				} else {
					for _, conn := range players {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			}
			h.mu.RUnlock()

		case roomID := <-h.closeRoom:
			h.mu.Lock()
			if players, ok := h.playerConns[roomID]; ok {
				for _, conn := range players {
					close(conn.Send)
				}
				delete(h.playerConns, roomID)
			}
			h.mu.Unlock()
			log.Printf("Closed all connections for room %s", roomID)
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToRoom sends an event to every player in a room (implements game.Broadcaster)
func (h *Hub) BroadcastToRoom(roomID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomID: roomID,
		Message: &Message{
			Type:    event,
			Payload: data,
		},
	}
}

// BroadcastToPlayer sends an event to one player only (implements game.Broadcaster)
func (h *Hub) BroadcastToPlayer(roomID, playerID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomID:   roomID,
		ToPlayer: playerID,
		Message: &Message{
			Type:    event,
			Payload: data,
		},
	}
}

// CloseRoom drops every connection of a deleted room (implements service.RoomCloser)
func (h *Hub) CloseRoom(roomID string) {
	h.closeRoom <- roomID
}

package model

import "time"

// ChatMessage is one entry in a room's append-only chat log. The sender name
// is snapshotted at send time so the log survives the sender leaving.
type ChatMessage struct {
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sentAt"`
}

package model

import "time"

// GameRecord is the archived outcome of a finished game, persisted to
// MongoDB when a room reaches the ended phase. Write-only history; live
// room state is never rebuilt from it.
type GameRecord struct {
	RoomID  string         `json:"roomId" bson:"roomId"`
	Winner  Team           `json:"winner" bson:"winner"`
	Rounds  int            `json:"rounds" bson:"rounds"`
	Players []PlayerReveal `json:"players" bson:"players"`
	EndedAt time.Time      `json:"endedAt" bson:"endedAt"`
}

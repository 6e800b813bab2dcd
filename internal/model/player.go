package model

// PlayerKind distinguishes human players from AI-controlled ones
type PlayerKind string

const (
	PlayerHuman PlayerKind = "human"
	PlayerAI    PlayerKind = "ai"
)

// Player is a participant in a room. Role and Team are empty until the game
// starts; Team is always derived from Role via RoleTeams.
type Player struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Kind    PlayerKind `json:"kind"`
	IsAlive bool       `json:"isAlive"`
	IsHost  bool       `json:"isHost"`
	Role    Role       `json:"-"`
	Team    Team       `json:"-"`
}

// PublicView strips the secret role/team fields for broadcast
func (p *Player) PublicView() PlayerPublic {
	return PlayerPublic{
		ID:      p.ID,
		Name:    p.Name,
		Kind:    p.Kind,
		IsAlive: p.IsAlive,
		IsHost:  p.IsHost,
	}
}

// Reveal exposes the role, used for eliminations and game end
func (p *Player) Reveal() PlayerReveal {
	return PlayerReveal{
		ID:      p.ID,
		Name:    p.Name,
		Role:    p.Role,
		Team:    p.Team,
		IsAlive: p.IsAlive,
	}
}

// PlayerPublic is the broadcast-safe view of a player
type PlayerPublic struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Kind    PlayerKind `json:"kind"`
	IsAlive bool       `json:"isAlive"`
	IsHost  bool       `json:"isHost"`
}

// PlayerReveal is a player with their role exposed
type PlayerReveal struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	Team    Team   `json:"team"`
	IsAlive bool   `json:"isAlive"`
}

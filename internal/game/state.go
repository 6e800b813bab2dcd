package game

import (
	"sync"
	"time"

	"moonhollow/internal/model"
)

// State is the authoritative mutable state of a single room. All exported
// methods take the room lock, so every individual mutation is indivisible
// relative to other mutations on the same room. The phase controller (same
// package) locks the state once per boundary resolution and works through
// the unexported helpers so the whole resolution is one atomic step.
type State struct {
	mu sync.Mutex

	roomID      string
	phase       model.GamePhase
	players     map[string]*model.Player
	order       []string // join order, drives host transfer
	messages    []model.ChatMessage
	roundNumber int

	phaseDuration int        // seconds, 0 when untimed
	phaseEndsAt   *time.Time // nil when untimed
	phaseGen      uint64     // bumped on every phase change; guards stale timer callbacks

	votes         map[string]string // voter -> target, reset on voting entry
	werewolfVotes map[string]string // wolf -> target, reset on night entry
	seerTarget    string
	doctorTarget  string
}

// NewState creates an empty room in the lobby phase
func NewState(roomID string) *State {
	return &State{
		roomID:        roomID,
		phase:         model.PhaseLobby,
		players:       make(map[string]*model.Player),
		votes:         make(map[string]string),
		werewolfVotes: make(map[string]string),
	}
}

// RoomID returns the room's addressing key
func (s *State) RoomID() string {
	return s.roomID
}

// Phase returns the current phase
func (s *State) Phase() model.GamePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// RoundNumber returns the current round counter
func (s *State) RoundNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roundNumber
}

// AddPlayer inserts a player into the roster
func (s *State) AddPlayer(p *model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.players[p.ID] = p
}

// RemovePlayer drops a player; removing an unknown id is a no-op
func (s *State) RemovePlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removePlayer(playerID)
}

func (s *State) removePlayer(playerID string) {
	if _, ok := s.players[playerID]; !ok {
		return
	}
	delete(s.players, playerID)
	for i, id := range s.order {
		if id == playerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Player returns a copy of the player, or false if unknown
func (s *State) Player(playerID string) (model.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return model.Player{}, false
	}
	return *p, true
}

// PlayerCount returns the roster size
func (s *State) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// HostID returns the current host's id, or empty if the room is empty
func (s *State) HostID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.IsHost {
			return p.ID
		}
	}
	return ""
}

// AddMessage appends to the room's chat log
func (s *State) AddMessage(msg model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the chat log
func (s *State) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// SubmitVote records a day vote. Succeeds iff voter and target exist, both
// are alive, and the voter is not voting for themselves. The caller is
// responsible for checking the room is in the voting phase.
func (s *State) SubmitVote(voterID, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	voter, ok := s.players[voterID]
	if !ok || !voter.IsAlive {
		return false
	}
	target, ok := s.players[targetID]
	if !ok || !target.IsAlive || voterID == targetID {
		return false
	}
	s.votes[voterID] = targetID
	return true
}

// SubmitWerewolfVote records a night kill vote. Wolves cannot target
// themselves or a living fellow werewolf.
func (s *State) SubmitWerewolfVote(wolfID, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	wolf, ok := s.players[wolfID]
	if !ok || !wolf.IsAlive {
		return false
	}
	target, ok := s.players[targetID]
	if !ok || !target.IsAlive || wolfID == targetID {
		return false
	}
	if target.Role == model.RoleWerewolf {
		return false
	}
	s.werewolfVotes[wolfID] = targetID
	return true
}

// SubmitSeerAction records the seer's investigation target for tonight
func (s *State) SubmitSeerAction(seerID, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seer, ok := s.players[seerID]
	if !ok || !seer.IsAlive {
		return false
	}
	target, ok := s.players[targetID]
	if !ok || !target.IsAlive || seerID == targetID {
		return false
	}
	s.seerTarget = targetID
	return true
}

// SubmitDoctorAction records the doctor's protection target. Self-protection
// is allowed.
func (s *State) SubmitDoctorAction(doctorID, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doctor, ok := s.players[doctorID]
	if !ok || !doctor.IsAlive {
		return false
	}
	target, ok := s.players[targetID]
	if !ok || !target.IsAlive {
		return false
	}
	s.doctorTarget = targetID
	return true
}

// VoteCounts returns the current day-vote tally as target -> count
func (s *State) VoteCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tally(s.votes)
}

// WerewolfVoteCounts returns the current werewolf tally as target -> count
func (s *State) WerewolfVoteCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tally(s.werewolfVotes)
}

// EliminationTarget returns the day-vote plurality winner, or empty on a tie
// or when nobody voted.
func (s *State) EliminationTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eliminationTarget()
}

func (s *State) eliminationTarget() string {
	return pluralityTarget(s.votes)
}

// WerewolfKillTarget returns the werewolf plurality winner under the same
// tie-to-none policy as the day vote.
func (s *State) WerewolfKillTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.werewolfKillTarget()
}

func (s *State) werewolfKillTarget() string {
	return pluralityTarget(s.werewolfVotes)
}

func tally(votes map[string]string) map[string]int {
	counts := make(map[string]int)
	for _, target := range votes {
		counts[target]++
	}
	return counts
}

// pluralityTarget returns the target with the strict maximum count; a tie
// for the maximum yields no target.
func pluralityTarget(votes map[string]string) string {
	counts := tally(votes)
	if len(counts) == 0 {
		return ""
	}

	best := ""
	max := 0
	tied := false
	for target, n := range counts {
		switch {
		case n > max:
			best, max, tied = target, n, false
		case n == max:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}

func (s *State) clearVotes() {
	s.votes = make(map[string]string)
}

func (s *State) clearNightActions() {
	s.werewolfVotes = make(map[string]string)
	s.seerTarget = ""
	s.doctorTarget = ""
}

func (s *State) aliveWerewolves() int {
	n := 0
	for _, p := range s.players {
		if p.IsAlive && p.Role == model.RoleWerewolf {
			n++
		}
	}
	return n
}

func (s *State) aliveTown() int {
	n := 0
	for _, p := range s.players {
		if p.IsAlive && p.Team == model.TeamTown {
			n++
		}
	}
	return n
}

// CheckTownWins reports whether no living werewolves remain
func (s *State) CheckTownWins() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveWerewolves() == 0
}

// CheckMafiaWins reports whether the werewolves have reached parity with town
func (s *State) CheckMafiaWins() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveWerewolves() >= s.aliveTown()
}

// CheckWinCondition evaluates town first, then mafia; with nobody left alive
// on either side the game goes to town.
func (s *State) CheckWinCondition() (model.Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkWinCondition()
}

func (s *State) checkWinCondition() (model.Team, bool) {
	if s.aliveWerewolves() == 0 {
		return model.TeamTown, true
	}
	if s.aliveWerewolves() >= s.aliveTown() {
		return model.TeamMafia, true
	}
	return "", false
}

// Snapshot builds the public view of the room
func (s *State) Snapshot() *model.RoomSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &model.RoomSnapshot{
		RoomID:      s.roomID,
		Phase:       s.phase,
		RoundNumber: s.roundNumber,
		Players:     make([]model.PlayerPublic, 0, len(s.players)),
		Messages:    append([]model.ChatMessage(nil), s.messages...),
		Duration:    s.phaseDuration,
	}
	for _, id := range s.order {
		snap.Players = append(snap.Players, s.players[id].PublicView())
	}
	if s.phaseEndsAt != nil {
		unix := s.phaseEndsAt.Unix()
		snap.PhaseEndsAt = &unix
	}
	return snap
}

// Reveals returns the full roster with roles exposed, in join order
func (s *State) Reveals() []model.PlayerReveal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reveals()
}

func (s *State) reveals() []model.PlayerReveal {
	out := make([]model.PlayerReveal, 0, len(s.players))
	for _, id := range s.order {
		out = append(out, s.players[id].Reveal())
	}
	return out
}

// AlivePlayers returns copies of all living players in join order
func (s *State) AlivePlayers() []model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Player, 0, len(s.players))
	for _, id := range s.order {
		if p := s.players[id]; p.IsAlive {
			out = append(out, *p)
		}
	}
	return out
}

// DeadPlayers returns copies of all dead players in join order
func (s *State) DeadPlayers() []model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Player, 0)
	for _, id := range s.order {
		if p := s.players[id]; !p.IsAlive {
			out = append(out, *p)
		}
	}
	return out
}

// AliveWerewolfIDs returns the ids of all living werewolves
func (s *State) AliveWerewolfIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveWerewolfIDs()
}

func (s *State) aliveWerewolfIDs() []string {
	out := make([]string, 0)
	for _, id := range s.order {
		if p := s.players[id]; p.IsAlive && p.Role == model.RoleWerewolf {
			out = append(out, id)
		}
	}
	return out
}

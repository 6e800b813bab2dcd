package ai

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"moonhollow/internal/cache"
	"moonhollow/internal/config"
	"moonhollow/internal/game"
	"moonhollow/internal/model"
)

const decisionTimeout = 15 * time.Second

// aiPlayer is the per-player memory an AI carries across phases. The
// decision strategy itself is shared and stateless.
type aiPlayer struct {
	id   string
	name string
	role model.Role
	team model.Team

	notes        string
	seerResults  []SeerResult
	messagesSent int
	maxMessages  int
}

// roomAI tracks the AI roster and background tasks of one room
type roomAI struct {
	players      map[string]*aiPlayer
	chatCancel   context.CancelFunc
	actionCancel context.CancelFunc
}

// Controller drives AI players: a chat loop during the day and scheduled
// vote/night-action submissions inside each timed phase. It implements
// game.PhaseListener.
type Controller struct {
	registry    *game.Registry
	broadcaster game.Broadcaster
	notes       cache.NotesCache
	cfg         *config.AIConfig
	strategy    Strategy
	useLLM      bool

	mu    sync.Mutex
	rooms map[string]*roomAI
}

// NewController selects the decision strategy from the config: Gemini when
// an API key is present, the scripted templates otherwise.
func NewController(registry *game.Registry, broadcaster game.Broadcaster, notes cache.NotesCache, cfg *config.AIConfig) *Controller {
	c := &Controller{
		registry:    registry,
		broadcaster: broadcaster,
		notes:       notes,
		cfg:         cfg,
		rooms:       make(map[string]*roomAI),
	}
	if cfg.IsEnabled() {
		c.strategy = NewLLMStrategy(cfg)
		c.useLLM = true
		log.Println("AI controller initialized with LLM strategy")
	} else {
		c.strategy = NewScriptedStrategy()
		log.Println("AI controller initialized with scripted strategy (no API key)")
	}
	return c
}

// AddAIPlayer joins an AI player into a room's lobby
func (c *Controller) AddAIPlayer(ctx context.Context, roomID string) (*model.Player, error) {
	state, ok := c.registry.Room(roomID)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	if state.Phase() != model.PhaseLobby {
		return nil, game.ErrWrongPhase
	}

	taken := make([]string, 0)
	for _, p := range state.AlivePlayers() {
		taken = append(taken, p.Name)
	}

	id := newAIID()
	name := pickName(taken)
	if _, err := c.registry.Join(roomID, id, name, model.PlayerAI); err != nil {
		return nil, err
	}

	ap := &aiPlayer{
		id:          id,
		name:        name,
		maxMessages: 3 + rand.Intn(4),
	}
	if c.useLLM {
		if saved, err := c.notes.Load(ctx, roomID, id); err == nil {
			ap.notes = saved
		}
	}

	c.mu.Lock()
	room := c.rooms[roomID]
	if room == nil {
		room = &roomAI{players: make(map[string]*aiPlayer)}
		c.rooms[roomID] = room
	}
	room.players[id] = ap
	c.mu.Unlock()

	log.Printf("Added AI player %s (%s) to room %s", name, id, roomID)

	player, _ := state.Player(id)
	return &player, nil
}

// RemoveAIPlayer drops an AI player from a room's lobby
func (c *Controller) RemoveAIPlayer(ctx context.Context, roomID, aiID string) error {
	c.mu.Lock()
	room := c.rooms[roomID]
	if room == nil || room.players[aiID] == nil {
		c.mu.Unlock()
		return game.ErrPlayerNotFound
	}
	delete(room.players, aiID)
	c.mu.Unlock()

	if _, err := c.registry.Leave(roomID, aiID); err != nil {
		return err
	}
	if err := c.notes.ClearPlayer(ctx, roomID, aiID); err != nil {
		log.Printf("Failed to clear notes for %s in room %s: %v", aiID, roomID, err)
	}
	return nil
}

// IsAIPlayer reports whether the id belongs to an AI in the room
func (c *Controller) IsAIPlayer(roomID, playerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	room := c.rooms[roomID]
	return room != nil && room.players[playerID] != nil
}

// OnGameStart copies the assigned roles into the AI roster
func (c *Controller) OnGameStart(roomID string) {
	state, ok := c.registry.Room(roomID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	room := c.rooms[roomID]
	if room == nil {
		return
	}
	for id, ap := range room.players {
		if p, ok := state.Player(id); ok {
			ap.role = p.Role
			ap.team = p.Team
			log.Printf("AI %s assigned role %s", ap.name, p.Role)
		}
	}
}

// OnPhaseChange starts and stops the per-phase AI machinery
func (c *Controller) OnPhaseChange(roomID string, phase model.GamePhase, durationSec int) {
	c.mu.Lock()
	room := c.rooms[roomID]
	c.mu.Unlock()
	if room == nil {
		return
	}

	switch phase {
	case model.PhaseDay:
		c.resetDailyCounters(roomID)
		c.startChatLoop(roomID)

	case model.PhaseVoting:
		c.stopChatLoop(roomID)
		c.scheduleActions(roomID, durationSec, 0.5, 0.9, c.submitVote)

	case model.PhaseNight:
		c.scheduleNotesUpdates(roomID)
		c.scheduleActions(roomID, durationSec, 0.4, 0.8, c.submitNightAction)

	case model.PhaseEnded:
		c.stopChatLoop(roomID)
		c.cancelActions(roomID)
		c.saveAllNotes(roomID)
	}
}

// CleanupRoom tears down AI resources when a room is deleted
func (c *Controller) CleanupRoom(roomID string) {
	c.stopChatLoop(roomID)
	c.cancelActions(roomID)

	c.mu.Lock()
	delete(c.rooms, roomID)
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.notes.ClearRoom(ctx, roomID); err != nil {
			log.Printf("Failed to clear notes for room %s: %v", roomID, err)
		}
	}()
}

func (c *Controller) resetDailyCounters(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if room := c.rooms[roomID]; room != nil {
		for _, ap := range room.players {
			ap.messagesSent = 0
			ap.maxMessages = 3 + rand.Intn(4)
		}
	}
}

func (c *Controller) aiIDs(roomID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	room := c.rooms[roomID]
	if room == nil {
		return nil
	}
	ids := make([]string, 0, len(room.players))
	for id := range room.players {
		ids = append(ids, id)
	}
	return ids
}

// startChatLoop runs AI day chatter until the phase ends
func (c *Controller) startChatLoop(roomID string) {
	c.stopChatLoop(roomID)

	c.mu.Lock()
	room := c.rooms[roomID]
	if room == nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	room.chatCancel = cancel
	c.mu.Unlock()

	go c.chatLoop(ctx, roomID)
}

func (c *Controller) stopChatLoop(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if room := c.rooms[roomID]; room != nil && room.chatCancel != nil {
		room.chatCancel()
		room.chatCancel = nil
	}
}

func (c *Controller) chatLoop(ctx context.Context, roomID string) {
	for {
		if !sleepCtx(ctx, randDuration(c.cfg.ChatIntervalMin, c.cfg.ChatIntervalMax)) {
			return
		}

		state, ok := c.registry.Room(roomID)
		if !ok || state.Phase() != model.PhaseDay {
			return
		}

		for _, aiID := range c.aiIDs(roomID) {
			if !sleepCtx(ctx, randDuration(c.cfg.StaggerMin, c.cfg.StaggerMax)) {
				return
			}
			state, ok = c.registry.Room(roomID)
			if !ok || state.Phase() != model.PhaseDay {
				return
			}
			p, ok := state.Player(aiID)
			if !ok || !p.IsAlive {
				continue
			}

			pc := c.buildContext(roomID, aiID, state)
			if pc == nil || pc.MessagesSent >= pc.MaxMessages {
				continue
			}

			decideCtx, cancel := context.WithTimeout(ctx, decisionTimeout)
			content, err := c.strategy.DecideChat(decideCtx, pc)
			cancel()
			if err != nil || content == "" {
				continue
			}

			msg := model.ChatMessage{
				PlayerID:   aiID,
				PlayerName: p.Name,
				Content:    content,
				SentAt:     time.Now(),
			}
			state.AddMessage(msg)
			c.broadcaster.BroadcastToRoom(roomID, game.EventNewMessage, msg)

			c.mu.Lock()
			if room := c.rooms[roomID]; room != nil {
				if ap := room.players[aiID]; ap != nil {
					ap.messagesSent++
				}
			}
			c.mu.Unlock()
		}
	}
}

// scheduleActions arms one deferred submission per living AI player at a
// random point inside [minFrac, maxFrac] of the phase window.
func (c *Controller) scheduleActions(roomID string, durationSec int, minFrac, maxFrac float64, submit func(ctx context.Context, roomID, aiID string)) {
	c.cancelActions(roomID)

	state, ok := c.registry.Room(roomID)
	if !ok {
		return
	}

	c.mu.Lock()
	room := c.rooms[roomID]
	if room == nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	room.actionCancel = cancel
	c.mu.Unlock()

	window := float64(durationSec)
	for _, aiID := range c.aiIDs(roomID) {
		p, ok := state.Player(aiID)
		if !ok || !p.IsAlive {
			continue
		}

		frac := minFrac + rand.Float64()*(maxFrac-minFrac)
		delay := time.Duration(window * frac * float64(time.Second))
		go func(aiID string) {
			if !sleepCtx(ctx, delay) {
				return
			}
			submit(ctx, roomID, aiID)
		}(aiID)
	}
}

func (c *Controller) cancelActions(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if room := c.rooms[roomID]; room != nil && room.actionCancel != nil {
		room.actionCancel()
		room.actionCancel = nil
	}
}

func (c *Controller) submitVote(ctx context.Context, roomID, aiID string) {
	state, ok := c.registry.Room(roomID)
	if !ok || state.Phase() != model.PhaseVoting {
		return
	}
	p, ok := state.Player(aiID)
	if !ok || !p.IsAlive {
		return
	}

	pc := c.buildContext(roomID, aiID, state)
	if pc == nil {
		return
	}

	// Wolves never vote for each other during the day either
	excluded := map[string]bool{aiID: true}
	if pc.Team == model.TeamMafia {
		for _, id := range state.AliveWerewolfIDs() {
			excluded[id] = true
		}
	}
	targets := filterCandidates(pc.Alive, excluded)
	if len(targets) == 0 {
		return
	}

	decideCtx, cancel := context.WithTimeout(ctx, decisionTimeout)
	targetID, err := c.strategy.ChooseVoteTarget(decideCtx, pc, targets)
	cancel()
	if err != nil || targetID == "" {
		return
	}

	if state.SubmitVote(aiID, targetID) {
		log.Printf("AI %s voted for %s", p.Name, targetID)
		c.broadcaster.BroadcastToRoom(roomID, game.EventVoteUpdate, model.VoteUpdateEvent{
			Votes: state.VoteCounts(),
		})
	}
}

func (c *Controller) submitNightAction(ctx context.Context, roomID, aiID string) {
	state, ok := c.registry.Room(roomID)
	if !ok || state.Phase() != model.PhaseNight {
		return
	}
	p, ok := state.Player(aiID)
	if !ok || !p.IsAlive || p.Role == model.RoleVillager {
		return
	}

	pc := c.buildContext(roomID, aiID, state)
	if pc == nil {
		return
	}

	excluded := map[string]bool{}
	switch p.Role {
	case model.RoleWerewolf:
		excluded[aiID] = true
		for _, id := range state.AliveWerewolfIDs() {
			excluded[id] = true
		}
	case model.RoleSeer:
		excluded[aiID] = true
	case model.RoleDoctor:
		// Doctors may protect themselves
	}
	targets := filterCandidates(pc.Alive, excluded)
	if len(targets) == 0 {
		return
	}

	decideCtx, cancel := context.WithTimeout(ctx, decisionTimeout)
	targetID, err := c.strategy.ChooseNightTarget(decideCtx, pc, targets)
	cancel()
	if err != nil || targetID == "" {
		return
	}

	switch p.Role {
	case model.RoleWerewolf:
		if state.SubmitWerewolfVote(aiID, targetID) {
			log.Printf("AI %s (werewolf) targeted %s", p.Name, targetID)
			counts := state.WerewolfVoteCounts()
			for _, wolfID := range state.AliveWerewolfIDs() {
				c.broadcaster.BroadcastToPlayer(roomID, wolfID, game.EventWerewolfVoteUpdate, model.VoteUpdateEvent{Votes: counts})
			}
		}

	case model.RoleSeer:
		if state.SubmitSeerAction(aiID, targetID) {
			log.Printf("AI %s (seer) investigated %s", p.Name, targetID)
			if target, ok := state.Player(targetID); ok {
				c.mu.Lock()
				if room := c.rooms[roomID]; room != nil {
					if ap := room.players[aiID]; ap != nil {
						ap.seerResults = append(ap.seerResults, SeerResult{
							TargetName: target.Name,
							IsWerewolf: target.Role == model.RoleWerewolf,
						})
					}
				}
				c.mu.Unlock()
			}
		}

	case model.RoleDoctor:
		if state.SubmitDoctorAction(aiID, targetID) {
			log.Printf("AI %s (doctor) protected %s", p.Name, targetID)
		}
	}
}

// scheduleNotesUpdates refreshes every LLM player's notes in the background
// during the night so they are current for the next day.
func (c *Controller) scheduleNotesUpdates(roomID string) {
	if !c.useLLM {
		return
	}

	go func() {
		var wg sync.WaitGroup
		for _, aiID := range c.aiIDs(roomID) {
			wg.Add(1)
			go func(aiID string) {
				defer wg.Done()
				c.updatePlayerNotes(roomID, aiID)
			}(aiID)
		}
		wg.Wait()
	}()
}

func (c *Controller) updatePlayerNotes(roomID, aiID string) {
	state, ok := c.registry.Room(roomID)
	if !ok {
		return
	}
	pc := c.buildContext(roomID, aiID, state)
	if pc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), decisionTimeout)
	defer cancel()

	notes, err := c.strategy.UpdateNotes(ctx, pc)
	if err != nil {
		log.Printf("Failed to update notes for %s: %v", pc.PlayerName, err)
		return
	}

	c.mu.Lock()
	if room := c.rooms[roomID]; room != nil {
		if ap := room.players[aiID]; ap != nil {
			ap.notes = notes
		}
	}
	c.mu.Unlock()

	if err := c.notes.Save(ctx, roomID, aiID, notes); err != nil {
		log.Printf("Failed to save notes for %s: %v", aiID, err)
	}
}

func (c *Controller) saveAllNotes(roomID string) {
	if !c.useLLM {
		return
	}

	c.mu.Lock()
	room := c.rooms[roomID]
	snapshot := make(map[string]string)
	if room != nil {
		for id, ap := range room.players {
			if ap.notes != "" {
				snapshot[id] = ap.notes
			}
		}
	}
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for id, notes := range snapshot {
			if err := c.notes.Save(ctx, roomID, id, notes); err != nil {
				log.Printf("Failed to save notes for %s: %v", id, err)
			}
		}
	}()
}

// buildContext assembles the decision context for one AI player
func (c *Controller) buildContext(roomID, aiID string, state *game.State) *PlayerContext {
	c.mu.Lock()
	room := c.rooms[roomID]
	if room == nil || room.players[aiID] == nil {
		c.mu.Unlock()
		return nil
	}
	ap := room.players[aiID]
	pc := &PlayerContext{
		PlayerID:     ap.id,
		PlayerName:   ap.name,
		Role:         ap.role,
		Team:         ap.team,
		SeerResults:  append([]SeerResult(nil), ap.seerResults...),
		MessagesSent: ap.messagesSent,
		MaxMessages:  ap.maxMessages,
		Notes:        ap.notes,
	}
	c.mu.Unlock()

	pc.Phase = state.Phase()
	pc.RoundNumber = state.RoundNumber()
	pc.Messages = state.Messages()
	pc.PlayerNames = make(map[string]string)

	for _, p := range state.AlivePlayers() {
		pc.Alive = append(pc.Alive, Candidate{ID: p.ID, Name: p.Name})
		pc.PlayerNames[p.ID] = p.Name
	}
	for _, p := range state.DeadPlayers() {
		pc.Dead = append(pc.Dead, Candidate{ID: p.ID, Name: p.Name})
		pc.PlayerNames[p.ID] = p.Name
	}

	if pc.Phase == model.PhaseVoting {
		pc.VoteCounts = state.VoteCounts()
	}
	if pc.Role == model.RoleWerewolf {
		for _, id := range state.AliveWerewolfIDs() {
			if id != aiID {
				pc.FellowWolves = append(pc.FellowWolves, id)
			}
		}
	}
	return pc
}

func filterCandidates(candidates []Candidate, excluded map[string]bool) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !excluded[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// sleepCtx waits for d, returning false if the context was cancelled first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

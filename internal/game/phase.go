package game

import (
	"context"
	"log"
	"sync"
	"time"

	"moonhollow/internal/model"
)

// Archiver persists finished games. Failures are logged and never block the
// game-end accounting.
type Archiver interface {
	SaveRecord(ctx context.Context, rec *model.GameRecord) error
}

// Durations configures the timed phases
type Durations struct {
	Day    time.Duration
	Voting time.Duration
	Night  time.Duration
}

// DefaultDurations matches the standard pacing of a round
func DefaultDurations() Durations {
	return Durations{
		Day:    90 * time.Second,
		Voting: 30 * time.Second,
		Night:  30 * time.Second,
	}
}

func (d Durations) of(phase model.GamePhase) time.Duration {
	switch phase {
	case model.PhaseDay:
		return d.Day
	case model.PhaseVoting:
		return d.Voting
	case model.PhaseNight:
		return d.Night
	default:
		return 0
	}
}

// phaseTimer is the deferred callback handle for one room. cancelled is the
// cooperative-cancellation token checked under the controller lock; gen is
// the phase generation the callback was armed for, re-verified under the
// state lock in advance. A callback that already passed the token check when
// a skip lands still bails on the generation check, so it can never resolve
// the phase the skip just opened.
type phaseTimer struct {
	timer     *time.Timer
	cancelled bool
	gen       uint64
}

// Controller drives the per-room phase state machine. One controller serves
// all rooms; each room has at most one pending deferred callback at a time.
type Controller struct {
	registry    *Registry
	broadcaster Broadcaster
	durations   Durations

	listener PhaseListener // optional
	archiver Archiver      // optional

	mu     sync.Mutex
	timers map[string]*phaseTimer
}

// NewController creates a phase controller over the registry
func NewController(registry *Registry, broadcaster Broadcaster, durations Durations) *Controller {
	return &Controller{
		registry:    registry,
		broadcaster: broadcaster,
		durations:   durations,
		timers:      make(map[string]*phaseTimer),
	}
}

// SetListener wires the AI controller's phase hooks
func (c *Controller) SetListener(l PhaseListener) {
	c.listener = l
}

// SetArchiver wires the finished-game archive
func (c *Controller) SetArchiver(a Archiver) {
	c.archiver = a
}

// StartGame assigns roles, privately delivers them, and opens the first day.
// Valid only from the lobby. Host authorization is the caller's concern.
func (c *Controller) StartGame(roomID string) error {
	state, ok := c.registry.Room(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	state.mu.Lock()
	if state.phase != model.PhaseLobby {
		state.mu.Unlock()
		return ErrWrongPhase
	}
	state.assignRoles()
	state.roundNumber = 1
	wolfIDs := state.aliveWerewolfIDs()
	roster := make([]model.Player, 0, len(state.players))
	for _, id := range state.order {
		roster = append(roster, *state.players[id])
	}
	state.mu.Unlock()

	log.Printf("Roles assigned for room %s", roomID)

	// Each player learns their own role; werewolves also learn each other.
	for _, p := range roster {
		ev := model.GameStartedEvent{Role: p.Role, Team: p.Team}
		if p.Role == model.RoleWerewolf {
			ev.WerewolfIDs = wolfIDs
		}
		c.broadcaster.BroadcastToPlayer(roomID, p.ID, EventGameStarted, ev)
	}

	if c.listener != nil {
		c.listener.OnGameStart(roomID)
	}

	c.transition(roomID, model.PhaseDay)
	return nil
}

// SkipToVoting cancels the pending day timer and opens voting immediately.
// Only valid during the day; the day phase has no boundary resolution so
// none is run.
func (c *Controller) SkipToVoting(roomID string) error {
	state, ok := c.registry.Room(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	state.mu.Lock()
	if state.phase != model.PhaseDay {
		state.mu.Unlock()
		return ErrWrongPhase
	}
	// Invalidates the armed day callback even when it is already past its
	// timer token check.
	state.phaseGen++
	state.mu.Unlock()

	c.cancelTimer(roomID)
	c.transition(roomID, model.PhaseVoting)
	return nil
}

// CleanupRoom cancels the room's pending timer when the room goes away
func (c *Controller) CleanupRoom(roomID string) {
	c.cancelTimer(roomID)
}

// transition performs the entry actions for a phase, notifies the room, and
// schedules the next deferred callback for timed phases.
func (c *Controller) transition(roomID string, phase model.GamePhase) {
	state, ok := c.registry.Room(roomID)
	if !ok {
		return
	}

	duration := int(c.durations.of(phase) / time.Second)

	state.mu.Lock()
	switch phase {
	case model.PhaseVoting:
		state.clearVotes()
	case model.PhaseNight:
		state.clearNightActions()
	}
	state.phase = phase
	state.phaseDuration = duration
	state.phaseGen++
	if duration > 0 {
		endsAt := time.Now().Add(c.durations.of(phase))
		state.phaseEndsAt = &endsAt
	} else {
		state.phaseEndsAt = nil
	}
	round := state.roundNumber
	endsAt := state.phaseEndsAt
	gen := state.phaseGen
	state.mu.Unlock()

	ev := model.PhaseChangedEvent{
		Phase:       phase,
		Duration:    duration,
		RoundNumber: round,
	}
	if endsAt != nil {
		unix := endsAt.Unix()
		ev.EndsAt = &unix
	}
	c.broadcaster.BroadcastToRoom(roomID, EventPhaseChanged, ev)

	if c.listener != nil {
		c.listener.OnPhaseChange(roomID, phase, duration)
	}

	if duration > 0 {
		c.schedule(roomID, c.durations.of(phase), gen)
	}
}

// schedule arms the deferred callback for a room, superseding any pending
// one so at most one is ever in flight per room.
func (c *Controller) schedule(roomID string, d time.Duration, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.timers[roomID]; ok {
		prev.cancelled = true
		prev.timer.Stop()
	}
	pt := &phaseTimer{gen: gen}
	pt.timer = time.AfterFunc(d, func() {
		c.fire(roomID, pt)
	})
	c.timers[roomID] = pt
}

// cancelTimer invalidates the room's pending callback, if any
func (c *Controller) cancelTimer(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pt, ok := c.timers[roomID]; ok {
		pt.cancelled = true
		pt.timer.Stop()
		delete(c.timers, roomID)
	}
}

// fire runs when a phase deadline elapses. The token check happens before
// any mutation; a callback that lost the race to a skip or cleanup no-ops.
func (c *Controller) fire(roomID string, pt *phaseTimer) {
	c.mu.Lock()
	if pt.cancelled || c.timers[roomID] != pt {
		c.mu.Unlock()
		return
	}
	delete(c.timers, roomID)
	c.mu.Unlock()

	c.advance(roomID, pt.gen)
}

// advance resolves the expiring phase and moves to the next one. The caller
// passes the generation it was armed for; a mismatch means the phase changed
// since arming and the callback must not resolve it. A room that disappeared
// while the timer was pending is expected, not an error.
func (c *Controller) advance(roomID string, gen uint64) {
	state, ok := c.registry.Room(roomID)
	if !ok {
		log.Printf("Phase timer fired for missing room %s", roomID)
		return
	}

	state.mu.Lock()
	if state.phaseGen != gen {
		state.mu.Unlock()
		log.Printf("Stale phase timer ignored for room %s", roomID)
		return
	}
	current := state.phase
	state.mu.Unlock()
	next := nextPhase(current)
	log.Printf("Room %s: %s -> %s", roomID, current, next)

	ended := false
	switch current {
	case model.PhaseVoting:
		ended = c.resolveVotes(roomID, state)
	case model.PhaseNight:
		ended = c.resolveNight(roomID, state)
	}
	if ended {
		return
	}

	if next == model.PhaseDay {
		state.mu.Lock()
		state.roundNumber++
		state.mu.Unlock()
	}
	c.transition(roomID, next)
}

// nextPhase is the timer-driven default flow; anything without a successor
// maps to ended.
func nextPhase(current model.GamePhase) model.GamePhase {
	switch current {
	case model.PhaseDay:
		return model.PhaseVoting
	case model.PhaseVoting:
		return model.PhaseNight
	case model.PhaseNight:
		return model.PhaseDay
	default:
		return model.PhaseEnded
	}
}

// resolveVotes applies the day-vote plurality at the voting boundary.
// Returns true when the game ended.
func (c *Controller) resolveVotes(roomID string, state *State) bool {
	state.mu.Lock()
	targetID := state.eliminationTarget()
	var eliminated *model.PlayerReveal
	if targetID != "" {
		if target, ok := state.players[targetID]; ok {
			target.IsAlive = false
			rv := target.Reveal()
			eliminated = &rv
		}
	}
	state.mu.Unlock()

	if eliminated == nil {
		log.Printf("No elimination in room %s (tie or no votes)", roomID)
		c.broadcaster.BroadcastToRoom(roomID, EventPlayerEliminated, model.PlayerEliminatedEvent{
			Eliminated: nil,
			Reason:     "No majority vote",
		})
		return false
	}

	log.Printf("Player %s eliminated in room %s", eliminated.Name, roomID)
	c.broadcaster.BroadcastToRoom(roomID, EventPlayerEliminated, model.PlayerEliminatedEvent{
		Eliminated: eliminated,
		Reason:     "Voted out by the village",
	})

	return c.checkAndEndGame(roomID, state)
}

// resolveNight applies doctor protection, the werewolf plurality kill, and
// the seer's private investigation. Returns true when the game ended.
func (c *Controller) resolveNight(roomID string, state *State) bool {
	state.mu.Lock()

	protectedID := state.doctorTarget
	killTargetID := state.werewolfKillTarget()

	// Seer result is gathered under the lock, delivered after.
	var seerID string
	var seerResult *model.SeerResultEvent
	if state.seerTarget != "" {
		for _, p := range state.players {
			if p.Role == model.RoleSeer && p.IsAlive {
				seerID = p.ID
				break
			}
		}
		if target, ok := state.players[state.seerTarget]; ok && seerID != "" {
			seerResult = &model.SeerResultEvent{
				TargetID:   target.ID,
				TargetName: target.Name,
				Role:       target.Role,
			}
		}
	}

	deaths := make([]model.PlayerReveal, 0, 1)
	if killTargetID != "" {
		if killTargetID == protectedID {
			log.Printf("Doctor saved the werewolf target in room %s", roomID)
		} else if target, ok := state.players[killTargetID]; ok && target.IsAlive {
			target.IsAlive = false
			deaths = append(deaths, target.Reveal())
			log.Printf("Werewolves killed %s in room %s", target.Name, roomID)
		}
	}
	state.mu.Unlock()

	if seerResult != nil {
		c.broadcaster.BroadcastToPlayer(roomID, seerID, EventSeerResult, *seerResult)
	}

	c.broadcaster.BroadcastToRoom(roomID, EventNightResult, model.NightResultEvent{Deaths: deaths})

	return c.checkAndEndGame(roomID, state)
}

// checkAndEndGame ends the game if a team has won. The ended phase has no
// timer and no successor.
func (c *Controller) checkAndEndGame(roomID string, state *State) bool {
	state.mu.Lock()
	winner, won := state.checkWinCondition()
	if !won {
		state.mu.Unlock()
		return false
	}
	state.phase = model.PhaseEnded
	state.phaseDuration = 0
	state.phaseEndsAt = nil
	state.phaseGen++
	reveals := state.reveals()
	rounds := state.roundNumber
	state.mu.Unlock()

	log.Printf("Game ended in room %s, winner: %s", roomID, winner)

	c.cancelTimer(roomID)

	c.broadcaster.BroadcastToRoom(roomID, EventGameEnded, model.GameEndedEvent{
		Winner:  winner,
		Players: reveals,
	})
	c.broadcaster.BroadcastToRoom(roomID, EventPhaseChanged, model.PhaseChangedEvent{
		Phase:       model.PhaseEnded,
		Duration:    0,
		RoundNumber: rounds,
	})

	if c.listener != nil {
		c.listener.OnPhaseChange(roomID, model.PhaseEnded, 0)
	}

	if c.archiver != nil {
		rec := &model.GameRecord{
			RoomID:  roomID,
			Winner:  winner,
			Rounds:  rounds,
			Players: reveals,
			EndedAt: time.Now(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.archiver.SaveRecord(ctx, rec); err != nil {
				log.Printf("Failed to archive game for room %s: %v", roomID, err)
			}
		}()
	}

	return true
}

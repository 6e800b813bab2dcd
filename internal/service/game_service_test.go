package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"moonhollow/internal/ai"
	"moonhollow/internal/config"
	"moonhollow/internal/game"
	"moonhollow/internal/model"
)

type memBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *memBroadcaster) BroadcastToRoom(roomID string, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *memBroadcaster) BroadcastToPlayer(roomID, playerID string, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event+"@"+playerID)
}

func (b *memBroadcaster) count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == event {
			n++
		}
	}
	return n
}

type memNotesCache struct{}

func (memNotesCache) Save(ctx context.Context, roomID, playerID, notes string) error { return nil }
func (memNotesCache) Load(ctx context.Context, roomID, playerID string) (string, error) {
	return "", nil
}
func (memNotesCache) ClearPlayer(ctx context.Context, roomID, playerID string) error { return nil }
func (memNotesCache) ClearRoom(ctx context.Context, roomID string) error             { return nil }

type memArchiveRepo struct {
	mu      sync.Mutex
	records []model.GameRecord
}

func (r *memArchiveRepo) SaveRecord(ctx context.Context, rec *model.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

func (r *memArchiveRepo) ListRecent(ctx context.Context, limit int64) ([]model.GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.GameRecord, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

func newTestService(t *testing.T) (*GameService, *memBroadcaster) {
	t.Helper()
	return newTestServiceWithDurations(t, game.Durations{Day: time.Hour, Voting: time.Hour, Night: time.Hour})
}

func newTestServiceWithDurations(t *testing.T, durations game.Durations) (*GameService, *memBroadcaster) {
	t.Helper()

	registry := game.NewRegistry()
	bc := &memBroadcaster{}
	phases := game.NewController(registry, bc, durations)

	aiCfg := config.DefaultAIConfig()
	aiCfg.APIKey = ""
	aiCtrl := ai.NewController(registry, bc, memNotesCache{}, aiCfg)
	phases.SetListener(aiCtrl)

	svc := NewGameService(registry, phases, aiCtrl, NewAuthService("test-secret"), bc, &memArchiveRepo{})
	return svc, bc
}

// createLobby creates a room with a host and the given number of extra humans
func createLobby(t *testing.T, svc *GameService, extra int) (roomID, hostID string, others []string) {
	t.Helper()

	resp, err := svc.CreateRoom("Host")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	roomID = resp.Room.RoomID
	hostID = resp.PlayerID

	for i := 0; i < extra; i++ {
		name := string(rune('A' + i))
		joined, err := svc.Join(roomID, "Player "+name)
		if err != nil {
			t.Fatalf("Join: %v", err)
		}
		others = append(others, joined.PlayerID)
	}
	return roomID, hostID, others
}

func TestCreateRoomMakesCreatorHost(t *testing.T) {
	svc, bc := newTestService(t)

	resp, err := svc.CreateRoom("Alice")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if resp.Token == "" || resp.PlayerID == "" {
		t.Fatalf("incomplete join response %+v", resp)
	}
	if resp.Room.Phase != model.PhaseLobby {
		t.Fatalf("phase = %s, want lobby", resp.Room.Phase)
	}
	if len(resp.Room.Players) != 1 || !resp.Room.Players[0].IsHost {
		t.Fatalf("creator not host: %+v", resp.Room.Players)
	}
	if bc.count(game.EventPlayerJoined) != 1 {
		t.Fatal("player_joined not broadcast")
	}
}

func TestCreateRoomRequiresName(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CreateRoom("   "); err == nil {
		t.Fatal("blank name accepted")
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Join("NOSUCH", "Bob"); !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestJoinRejectedAfterStart(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, hostID, _ := createLobby(t, svc, 3)

	if err := svc.StartGame(roomID, hostID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	t.Cleanup(func() { svc.phases.CleanupRoom(roomID) })

	if _, err := svc.Join(roomID, "Late"); !errors.Is(err, game.ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestStartGameHostOnly(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, _, others := createLobby(t, svc, 3)

	if err := svc.StartGame(roomID, others[0]); !errors.Is(err, game.ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
}

func TestSkipToVotingHostOnly(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, hostID, others := createLobby(t, svc, 3)
	if err := svc.StartGame(roomID, hostID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	t.Cleanup(func() { svc.phases.CleanupRoom(roomID) })

	if err := svc.SkipToVoting(roomID, others[0]); !errors.Is(err, game.ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if err := svc.SkipToVoting(roomID, hostID); err != nil {
		t.Fatalf("SkipToVoting: %v", err)
	}
}

func TestSubmitChatDayAndVoting(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, hostID, _ := createLobby(t, svc, 3)
	if err := svc.StartGame(roomID, hostID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	t.Cleanup(func() { svc.phases.CleanupRoom(roomID) })

	if _, err := svc.SubmitChat(roomID, hostID, "hello village"); err != nil {
		t.Fatalf("day chat rejected: %v", err)
	}

	state, _ := svc.registry.Room(roomID)
	snap := state.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Content != "hello village" {
		t.Fatalf("message not recorded: %+v", snap.Messages)
	}

	svc.SkipToVoting(roomID, hostID)
	if _, err := svc.SubmitChat(roomID, hostID, "still talking"); err != nil {
		t.Fatalf("voting chat rejected: %v", err)
	}
}

func TestSubmitChatTruncatesOnRuneBoundary(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, hostID, _ := createLobby(t, svc, 3)
	if err := svc.StartGame(roomID, hostID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	t.Cleanup(func() { svc.phases.CleanupRoom(roomID) })

	// 3 bytes per rune, 600 bytes total: the 500-byte cap lands mid-rune
	msg, err := svc.SubmitChat(roomID, hostID, strings.Repeat("狼", 200))
	if err != nil {
		t.Fatalf("SubmitChat: %v", err)
	}
	if !utf8.ValidString(msg.Content) {
		t.Fatal("truncated chat message is not valid UTF-8")
	}
	if len(msg.Content) > maxChatLength {
		t.Fatalf("message length = %d bytes, want <= %d", len(msg.Content), maxChatLength)
	}
}

func TestSubmitVotePhaseGated(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, hostID, others := createLobby(t, svc, 3)
	if err := svc.StartGame(roomID, hostID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	t.Cleanup(func() { svc.phases.CleanupRoom(roomID) })

	if err := svc.SubmitVote(roomID, hostID, others[0]); !errors.Is(err, game.ErrWrongPhase) {
		t.Fatalf("day vote: expected ErrWrongPhase, got %v", err)
	}

	svc.SkipToVoting(roomID, hostID)
	if err := svc.SubmitVote(roomID, hostID, others[0]); err != nil {
		t.Fatalf("SubmitVote: %v", err)
	}
	if err := svc.SubmitVote(roomID, hostID, hostID); !errors.Is(err, game.ErrInvalidTarget) {
		t.Fatalf("self vote: expected ErrInvalidTarget, got %v", err)
	}
}

func TestSubmitNightActionVillagerRejected(t *testing.T) {
	// Short voting timer carries the room into the night on its own
	svc, _ := newTestServiceWithDurations(t, game.Durations{Day: time.Hour, Voting: 20 * time.Millisecond, Night: time.Hour})
	roomID, hostID, _ := createLobby(t, svc, 5)
	if err := svc.StartGame(roomID, hostID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	t.Cleanup(func() { svc.phases.CleanupRoom(roomID) })

	state, _ := svc.registry.Room(roomID)
	svc.SkipToVoting(roomID, hostID)
	deadline := time.After(2 * time.Second)
	for state.Phase() != model.PhaseNight {
		select {
		case <-deadline:
			t.Fatalf("room never reached night, stuck in %s", state.Phase())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := svc.SubmitChat(roomID, hostID, "psst"); !errors.Is(err, game.ErrWrongPhase) {
		t.Fatalf("night chat: expected ErrWrongPhase, got %v", err)
	}

	var villager, wolf, victim string
	for _, p := range state.AlivePlayers() {
		switch p.Role {
		case model.RoleVillager:
			if villager == "" {
				villager = p.ID
			} else if victim == "" {
				victim = p.ID
			}
		case model.RoleWerewolf:
			wolf = p.ID
		}
	}

	if err := svc.SubmitNightAction(roomID, villager, victim); !errors.Is(err, game.ErrNoNightAction) {
		t.Fatalf("villager night action: expected ErrNoNightAction, got %v", err)
	}
	if err := svc.SubmitNightAction(roomID, wolf, victim); err != nil {
		t.Fatalf("wolf night action: %v", err)
	}
}

func TestLeaveLastPlayerDeletesRoom(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, hostID, _ := createLobby(t, svc, 0)

	if err := svc.Leave(context.Background(), roomID, hostID); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if _, err := svc.Snapshot(roomID); !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestLeaveTransfersHostAndBroadcasts(t *testing.T) {
	svc, bc := newTestService(t)
	roomID, hostID, others := createLobby(t, svc, 2)

	if err := svc.Leave(context.Background(), roomID, hostID); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if bc.count(game.EventPlayerLeft) != 1 {
		t.Fatal("player_left not broadcast")
	}
	if bc.count(game.EventHostChanged) != 1 {
		t.Fatal("host_changed not broadcast")
	}

	state, _ := svc.registry.Room(roomID)
	if state.HostID() != others[0] {
		t.Fatalf("host = %q, want %q", state.HostID(), others[0])
	}
}

func TestAddAIPlayerHostOnly(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, hostID, others := createLobby(t, svc, 1)

	if _, err := svc.AddAIPlayer(context.Background(), roomID, others[0]); !errors.Is(err, game.ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}

	p, err := svc.AddAIPlayer(context.Background(), roomID, hostID)
	if err != nil {
		t.Fatalf("AddAIPlayer: %v", err)
	}
	if p.Kind != model.PlayerAI {
		t.Fatalf("kind = %s, want ai", p.Kind)
	}
}

func TestRemoveAIPlayerRejectsHumans(t *testing.T) {
	svc, _ := newTestService(t)
	roomID, hostID, others := createLobby(t, svc, 1)

	if err := svc.RemoveAIPlayer(context.Background(), roomID, hostID, others[0]); !errors.Is(err, game.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestListRecentGamesClampsLimit(t *testing.T) {
	svc, _ := newTestService(t)

	repo := svc.archiveRepo.(*memArchiveRepo)
	for i := 0; i < 30; i++ {
		repo.SaveRecord(context.Background(), &model.GameRecord{RoomID: "R", Winner: model.TeamTown})
	}

	records, err := svc.ListRecentGames(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecentGames: %v", err)
	}
	if len(records) != 20 {
		t.Fatalf("default limit returned %d records, want 20", len(records))
	}
}

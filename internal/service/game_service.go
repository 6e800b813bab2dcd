package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"moonhollow/internal/ai"
	"moonhollow/internal/game"
	"moonhollow/internal/model"
	"moonhollow/internal/repository"
)

const maxChatLength = 500

// truncateChat caps a message at maxChatLength bytes without splitting a rune
func truncateChat(content string) string {
	if len(content) <= maxChatLength {
		return content
	}
	cut := maxChatLength
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

// RoomCloser closes all live connections of a room, used when a room is
// deleted so clients are not left hanging on a dead socket.
type RoomCloser interface {
	CloseRoom(roomID string)
}

// GameService coordinates rooms, the phase controller and the AI controller
// behind one API surface for the transport layer.
type GameService struct {
	registry    *game.Registry
	phases      *game.Controller
	aiCtrl      *ai.Controller
	authSvc     *AuthService
	broadcaster game.Broadcaster
	archiveRepo repository.ArchiveRepo
	closer      RoomCloser
}

// NewGameService creates a new game service
func NewGameService(
	registry *game.Registry,
	phases *game.Controller,
	aiCtrl *ai.Controller,
	authSvc *AuthService,
	broadcaster game.Broadcaster,
	archiveRepo repository.ArchiveRepo,
) *GameService {
	return &GameService{
		registry:    registry,
		phases:      phases,
		aiCtrl:      aiCtrl,
		authSvc:     authSvc,
		broadcaster: broadcaster,
		archiveRepo: archiveRepo,
	}
}

// SetRoomCloser wires the websocket hub in after construction
func (s *GameService) SetRoomCloser(c RoomCloser) {
	s.closer = c
}

// CreateRoom creates a room and joins the creator as its host
func (s *GameService) CreateRoom(playerName string) (*model.JoinResponse, error) {
	roomID, err := s.registry.CreateRoom()
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	resp, err := s.join(roomID, playerName)
	if err != nil {
		s.registry.DeleteRoom(roomID)
		return nil, err
	}

	log.Printf("Room %s created by %s", roomID, playerName)
	return resp, nil
}

// Join adds a player to a room's lobby
func (s *GameService) Join(roomID, playerName string) (*model.JoinResponse, error) {
	state, ok := s.registry.Room(roomID)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	if state.Phase() != model.PhaseLobby {
		return nil, game.ErrWrongPhase
	}

	resp, err := s.join(roomID, playerName)
	if err != nil {
		return nil, err
	}

	log.Printf("Player %s joined room %s", playerName, roomID)
	return resp, nil
}

func (s *GameService) join(roomID, playerName string) (*model.JoinResponse, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, fmt.Errorf("player name is required")
	}

	playerID := uuid.New().String()
	state, err := s.registry.Join(roomID, playerID, playerName, model.PlayerHuman)
	if err != nil {
		return nil, err
	}

	token, err := s.authSvc.GeneratePlayerToken(roomID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	player, _ := state.Player(playerID)
	s.broadcaster.BroadcastToRoom(roomID, game.EventPlayerJoined, model.PlayerJoinedEvent{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Kind:       player.Kind,
	})

	return &model.JoinResponse{
		PlayerID: playerID,
		Token:    token,
		Room:     state.Snapshot(),
	}, nil
}

// Leave removes a player from their room
func (s *GameService) Leave(ctx context.Context, roomID, playerID string) error {
	result, err := s.registry.Leave(roomID, playerID)
	if err != nil {
		return err
	}
	s.afterLeave(ctx, result)
	return nil
}

// Disconnect handles a dropped websocket connection. Unknown players are
// ignored: the socket may have closed after an explicit leave.
func (s *GameService) Disconnect(playerID string) {
	result, err := s.registry.Disconnect(playerID)
	if err != nil || result == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.afterLeave(ctx, result)
}

func (s *GameService) afterLeave(ctx context.Context, result *game.LeaveResult) {
	log.Printf("Player %s left room %s", result.PlayerID, result.RoomID)

	if result.RoomDeleted {
		s.cleanupRoom(result.RoomID)
		return
	}

	s.broadcaster.BroadcastToRoom(result.RoomID, game.EventPlayerLeft, model.PlayerLeftEvent{
		PlayerID:   result.PlayerID,
		PlayerName: result.PlayerName,
	})
	if result.NewHostID != "" {
		s.broadcaster.BroadcastToRoom(result.RoomID, game.EventHostChanged, model.HostChangedEvent{
			NewHostID: result.NewHostID,
		})
	}
}

func (s *GameService) cleanupRoom(roomID string) {
	log.Printf("Room %s is empty, cleaning up", roomID)
	s.phases.CleanupRoom(roomID)
	s.aiCtrl.CleanupRoom(roomID)
	if s.closer != nil {
		s.closer.CloseRoom(roomID)
	}
}

// Snapshot returns the current public state of a room
func (s *GameService) Snapshot(roomID string) (*model.RoomSnapshot, error) {
	state, ok := s.registry.Room(roomID)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return state.Snapshot(), nil
}

// StartGame begins the game. Host only.
func (s *GameService) StartGame(roomID, playerID string) error {
	state, ok := s.registry.Room(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}
	if state.HostID() != playerID {
		return game.ErrNotHost
	}
	return s.phases.StartGame(roomID)
}

// SkipToVoting cuts the day discussion short. Host only.
func (s *GameService) SkipToVoting(roomID, playerID string) error {
	state, ok := s.registry.Room(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}
	if state.HostID() != playerID {
		return game.ErrNotHost
	}
	return s.phases.SkipToVoting(roomID)
}

// SubmitChat posts a chat message to the room. Dead players and the night
// phase are rejected.
func (s *GameService) SubmitChat(roomID, playerID, content string) (*model.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}
	content = truncateChat(content)

	state, ok := s.registry.Room(roomID)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	player, ok := state.Player(playerID)
	if !ok {
		return nil, game.ErrPlayerNotFound
	}
	if !player.IsAlive {
		return nil, game.ErrPlayerDead
	}
	if state.Phase() == model.PhaseNight {
		return nil, game.ErrWrongPhase
	}

	msg := model.ChatMessage{
		PlayerID:   playerID,
		PlayerName: player.Name,
		Content:    content,
		SentAt:     time.Now(),
	}
	state.AddMessage(msg)
	s.broadcaster.BroadcastToRoom(roomID, game.EventNewMessage, msg)
	return &msg, nil
}

// SubmitVote casts or replaces a player's day vote
func (s *GameService) SubmitVote(roomID, playerID, targetID string) error {
	state, ok := s.registry.Room(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}
	if state.Phase() != model.PhaseVoting {
		return game.ErrWrongPhase
	}
	player, ok := state.Player(playerID)
	if !ok {
		return game.ErrPlayerNotFound
	}
	if !player.IsAlive {
		return game.ErrPlayerDead
	}

	if !state.SubmitVote(playerID, targetID) {
		return game.ErrInvalidTarget
	}

	s.broadcaster.BroadcastToRoom(roomID, game.EventVoteUpdate, model.VoteUpdateEvent{
		Votes: state.VoteCounts(),
	})
	return nil
}

// SubmitNightAction routes a night action to the player's role. Werewolf
// kill votes are tallied and echoed privately to the living wolves.
func (s *GameService) SubmitNightAction(roomID, playerID, targetID string) error {
	state, ok := s.registry.Room(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}
	if state.Phase() != model.PhaseNight {
		return game.ErrWrongPhase
	}
	player, ok := state.Player(playerID)
	if !ok {
		return game.ErrPlayerNotFound
	}
	if !player.IsAlive {
		return game.ErrPlayerDead
	}

	switch player.Role {
	case model.RoleWerewolf:
		if !state.SubmitWerewolfVote(playerID, targetID) {
			return game.ErrInvalidTarget
		}
		counts := state.WerewolfVoteCounts()
		for _, wolfID := range state.AliveWerewolfIDs() {
			s.broadcaster.BroadcastToPlayer(roomID, wolfID, game.EventWerewolfVoteUpdate, model.VoteUpdateEvent{Votes: counts})
		}
		return nil

	case model.RoleSeer:
		if !state.SubmitSeerAction(playerID, targetID) {
			return game.ErrInvalidTarget
		}
		return nil

	case model.RoleDoctor:
		if !state.SubmitDoctorAction(playerID, targetID) {
			return game.ErrInvalidTarget
		}
		return nil

	default:
		return game.ErrNoNightAction
	}
}

// AddAIPlayer adds an AI player to the lobby. Host only.
func (s *GameService) AddAIPlayer(ctx context.Context, roomID, playerID string) (*model.Player, error) {
	state, ok := s.registry.Room(roomID)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	if state.HostID() != playerID {
		return nil, game.ErrNotHost
	}

	aiPlayer, err := s.aiCtrl.AddAIPlayer(ctx, roomID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastToRoom(roomID, game.EventPlayerJoined, model.PlayerJoinedEvent{
		PlayerID:   aiPlayer.ID,
		PlayerName: aiPlayer.Name,
		Kind:       aiPlayer.Kind,
	})
	return aiPlayer, nil
}

// RemoveAIPlayer removes an AI player from the lobby. Host only.
func (s *GameService) RemoveAIPlayer(ctx context.Context, roomID, playerID, aiID string) error {
	state, ok := s.registry.Room(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}
	if state.HostID() != playerID {
		return game.ErrNotHost
	}
	if state.Phase() != model.PhaseLobby {
		return game.ErrWrongPhase
	}

	aiPlayer, ok := state.Player(aiID)
	if !ok || aiPlayer.Kind != model.PlayerAI {
		return game.ErrPlayerNotFound
	}

	if err := s.aiCtrl.RemoveAIPlayer(ctx, roomID, aiID); err != nil {
		return err
	}

	s.broadcaster.BroadcastToRoom(roomID, game.EventPlayerLeft, model.PlayerLeftEvent{
		PlayerID:   aiID,
		PlayerName: aiPlayer.Name,
	})
	return nil
}

// ListRecentGames returns the most recently archived games
func (s *GameService) ListRecentGames(ctx context.Context, limit int) ([]model.GameRecord, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.archiveRepo.ListRecent(ctx, int64(limit))
}

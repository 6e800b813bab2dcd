package game

import (
	"errors"
	"fmt"
	"testing"

	"moonhollow/internal/model"
)

func TestCreateRoomGeneratesUniqueCodes(t *testing.T) {
	r := NewRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := r.CreateRoom()
		if err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
		if len(id) != 6 {
			t.Fatalf("room id %q is not 6 chars", id)
		}
		if seen[id] {
			t.Fatalf("duplicate room id %q", id)
		}
		seen[id] = true
	}
	if r.RoomCount() != 50 {
		t.Fatalf("RoomCount() = %d, want 50", r.RoomCount())
	}
}

func TestJoinFirstPlayerBecomesHost(t *testing.T) {
	r := NewRegistry()
	roomID, _ := r.CreateRoom()

	state, err := r.Join(roomID, "p1", "Alice", model.PlayerHuman)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := r.Join(roomID, "p2", "Bob", model.PlayerHuman); err != nil {
		t.Fatalf("Join: %v", err)
	}

	if state.HostID() != "p1" {
		t.Fatalf("HostID() = %q, want p1", state.HostID())
	}
	p2, _ := state.Player("p2")
	if p2.IsHost {
		t.Fatal("second joiner marked as host")
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Join("NOSUCH", "p1", "Alice", model.PlayerHuman); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestJoinFullRoom(t *testing.T) {
	r := NewRegistry()
	roomID, _ := r.CreateRoom()
	for i := 0; i < MaxPlayers; i++ {
		id := fmt.Sprintf("p%d", i)
		if _, err := r.Join(roomID, id, id, model.PlayerHuman); err != nil {
			t.Fatalf("Join %s: %v", id, err)
		}
	}

	if _, err := r.Join(roomID, "extra", "Extra", model.PlayerHuman); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestLeaveTransfersHost(t *testing.T) {
	r := NewRegistry()
	roomID, _ := r.CreateRoom()
	r.Join(roomID, "p1", "Alice", model.PlayerHuman)
	r.Join(roomID, "p2", "Bob", model.PlayerHuman)
	r.Join(roomID, "p3", "Cara", model.PlayerHuman)

	result, err := r.Leave(roomID, "p1")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if result.NewHostID != "p2" {
		t.Fatalf("NewHostID = %q, want p2 (oldest remaining)", result.NewHostID)
	}
	if result.RoomDeleted {
		t.Fatal("room deleted with players remaining")
	}

	state, _ := r.Room(roomID)
	if state.HostID() != "p2" {
		t.Fatalf("HostID() = %q, want p2", state.HostID())
	}
}

func TestLeaveNonHostKeepsHost(t *testing.T) {
	r := NewRegistry()
	roomID, _ := r.CreateRoom()
	r.Join(roomID, "p1", "Alice", model.PlayerHuman)
	r.Join(roomID, "p2", "Bob", model.PlayerHuman)

	result, err := r.Leave(roomID, "p2")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if result.NewHostID != "" {
		t.Fatalf("unexpected host transfer to %q", result.NewHostID)
	}
}

func TestLastLeaveDeletesRoom(t *testing.T) {
	r := NewRegistry()
	roomID, _ := r.CreateRoom()
	r.Join(roomID, "p1", "Alice", model.PlayerHuman)

	result, err := r.Leave(roomID, "p1")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if !result.RoomDeleted {
		t.Fatal("RoomDeleted not set for last player")
	}
	if _, ok := r.Room(roomID); ok {
		t.Fatal("room still present after last leave")
	}
	if _, ok := r.RoomOf("p1"); ok {
		t.Fatal("player index entry still present")
	}
}

func TestDisconnectUnknownPlayer(t *testing.T) {
	r := NewRegistry()
	result, err := r.Disconnect("stranger")
	if err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestDisconnectUsesReverseIndex(t *testing.T) {
	r := NewRegistry()
	roomID, _ := r.CreateRoom()
	r.Join(roomID, "p1", "Alice", model.PlayerHuman)
	r.Join(roomID, "p2", "Bob", model.PlayerHuman)

	result, err := r.Disconnect("p2")
	if err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if result.RoomID != roomID || result.PlayerID != "p2" || result.PlayerName != "Bob" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestDeleteRoomClearsPlayerIndex(t *testing.T) {
	r := NewRegistry()
	roomID, _ := r.CreateRoom()
	r.Join(roomID, "p1", "Alice", model.PlayerHuman)

	r.DeleteRoom(roomID)

	if _, ok := r.Room(roomID); ok {
		t.Fatal("room still present")
	}
	if _, ok := r.RoomOf("p1"); ok {
		t.Fatal("player index entry still present")
	}
}

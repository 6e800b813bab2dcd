package game

import (
	"testing"

	"moonhollow/internal/model"
)

func addPlayer(s *State, id, name string, role model.Role) {
	s.AddPlayer(&model.Player{
		ID:      id,
		Name:    name,
		Kind:    model.PlayerHuman,
		IsAlive: true,
		Role:    role,
		Team:    model.RoleTeams[role],
	})
}

func newTestState() *State {
	s := NewState("ROOM01")
	addPlayer(s, "w1", "Wolf One", model.RoleWerewolf)
	addPlayer(s, "w2", "Wolf Two", model.RoleWerewolf)
	addPlayer(s, "seer", "Seer", model.RoleSeer)
	addPlayer(s, "doc", "Doctor", model.RoleDoctor)
	addPlayer(s, "v1", "Villager One", model.RoleVillager)
	addPlayer(s, "v2", "Villager Two", model.RoleVillager)
	return s
}

func TestSubmitVote(t *testing.T) {
	tests := []struct {
		name    string
		voter   string
		target  string
		want    bool
		prepare func(s *State)
	}{
		{name: "valid vote", voter: "v1", target: "w1", want: true},
		{name: "self vote", voter: "v1", target: "v1", want: false},
		{name: "unknown voter", voter: "ghost", target: "v1", want: false},
		{name: "unknown target", voter: "v1", target: "ghost", want: false},
		{name: "dead voter", voter: "v1", target: "w1", want: false, prepare: func(s *State) {
			s.mu.Lock()
			s.players["v1"].IsAlive = false
			s.mu.Unlock()
		}},
		{name: "dead target", voter: "v1", target: "v2", want: false, prepare: func(s *State) {
			s.mu.Lock()
			s.players["v2"].IsAlive = false
			s.mu.Unlock()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState()
			if tt.prepare != nil {
				tt.prepare(s)
			}
			if got := s.SubmitVote(tt.voter, tt.target); got != tt.want {
				t.Fatalf("SubmitVote(%q, %q) = %v, want %v", tt.voter, tt.target, got, tt.want)
			}
		})
	}
}

func TestSubmitVoteReplacesPrevious(t *testing.T) {
	s := newTestState()
	if !s.SubmitVote("v1", "w1") {
		t.Fatal("first vote rejected")
	}
	if !s.SubmitVote("v1", "w2") {
		t.Fatal("replacement vote rejected")
	}

	counts := s.VoteCounts()
	if counts["w1"] != 0 {
		t.Fatalf("old target still counted: %v", counts)
	}
	if counts["w2"] != 1 {
		t.Fatalf("expected one vote for w2, got %v", counts)
	}
}

func TestSubmitWerewolfVote(t *testing.T) {
	tests := []struct {
		name   string
		wolf   string
		target string
		want   bool
	}{
		{name: "valid kill vote", wolf: "w1", target: "v1", want: true},
		{name: "self target", wolf: "w1", target: "w1", want: false},
		{name: "fellow wolf target", wolf: "w1", target: "w2", want: false},
		{name: "unknown target", wolf: "w1", target: "ghost", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState()
			if got := s.SubmitWerewolfVote(tt.wolf, tt.target); got != tt.want {
				t.Fatalf("SubmitWerewolfVote(%q, %q) = %v, want %v", tt.wolf, tt.target, got, tt.want)
			}
		})
	}
}

func TestSubmitSeerActionRejectsSelf(t *testing.T) {
	s := newTestState()
	if s.SubmitSeerAction("seer", "seer") {
		t.Fatal("seer investigated themselves")
	}
	if !s.SubmitSeerAction("seer", "w1") {
		t.Fatal("valid investigation rejected")
	}
}

func TestSubmitDoctorActionAllowsSelf(t *testing.T) {
	s := newTestState()
	if !s.SubmitDoctorAction("doc", "doc") {
		t.Fatal("doctor self-protection rejected")
	}
	if !s.SubmitDoctorAction("doc", "v1") {
		t.Fatal("valid protection rejected")
	}
}

func TestEliminationTarget(t *testing.T) {
	tests := []struct {
		name  string
		votes map[string]string // voter -> target
		want  string
	}{
		{name: "no votes", votes: nil, want: ""},
		{name: "clear plurality", votes: map[string]string{"v1": "w1", "v2": "w1", "seer": "v1"}, want: "w1"},
		{name: "two way tie", votes: map[string]string{"v1": "w1", "v2": "seer"}, want: ""},
		{name: "single vote", votes: map[string]string{"v1": "w1"}, want: "w1"},
		{name: "tie at two apiece", votes: map[string]string{"v1": "w1", "v2": "w1", "w1": "v1", "w2": "v1"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState()
			for voter, target := range tt.votes {
				if !s.SubmitVote(voter, target) {
					t.Fatalf("vote %s -> %s rejected", voter, target)
				}
			}
			if got := s.EliminationTarget(); got != tt.want {
				t.Fatalf("EliminationTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckWinCondition(t *testing.T) {
	t.Run("ongoing game has no winner", func(t *testing.T) {
		s := newTestState()
		if winner, won := s.CheckWinCondition(); won {
			t.Fatalf("unexpected winner %q", winner)
		}
	})

	t.Run("town wins when no wolves remain", func(t *testing.T) {
		s := newTestState()
		s.mu.Lock()
		s.players["w1"].IsAlive = false
		s.players["w2"].IsAlive = false
		s.mu.Unlock()

		winner, won := s.CheckWinCondition()
		if !won || winner != model.TeamTown {
			t.Fatalf("got (%q, %v), want town win", winner, won)
		}
	})

	t.Run("mafia wins at parity", func(t *testing.T) {
		s := newTestState()
		s.mu.Lock()
		s.players["seer"].IsAlive = false
		s.players["v1"].IsAlive = false
		s.mu.Unlock()

		// 2 wolves vs 2 town
		winner, won := s.CheckWinCondition()
		if !won || winner != model.TeamMafia {
			t.Fatalf("got (%q, %v), want mafia win", winner, won)
		}
	})

	t.Run("town wins check runs before mafia", func(t *testing.T) {
		s := NewState("EMPTY1")
		winner, won := s.CheckWinCondition()
		if !won || winner != model.TeamTown {
			t.Fatalf("got (%q, %v), want town win on empty roster", winner, won)
		}
	})
}

func TestSnapshotHidesRoles(t *testing.T) {
	s := newTestState()
	snap := s.Snapshot()

	if snap.RoomID != "ROOM01" {
		t.Fatalf("unexpected room id %q", snap.RoomID)
	}
	if len(snap.Players) != 6 {
		t.Fatalf("expected 6 players, got %d", len(snap.Players))
	}
	// Join order must be preserved
	if snap.Players[0].ID != "w1" || snap.Players[5].ID != "v2" {
		t.Fatalf("players out of join order: %v", snap.Players)
	}
}

func TestHostTracking(t *testing.T) {
	s := NewState("ROOM02")
	s.AddPlayer(&model.Player{ID: "a", Name: "A", IsAlive: true, IsHost: true})
	s.AddPlayer(&model.Player{ID: "b", Name: "B", IsAlive: true})

	if got := s.HostID(); got != "a" {
		t.Fatalf("HostID() = %q, want a", got)
	}

	s.RemovePlayer("a")
	if got := s.HostID(); got != "" {
		t.Fatalf("HostID() after host removal = %q, want empty", got)
	}
}

func TestAliveWerewolfIDs(t *testing.T) {
	s := newTestState()
	ids := s.AliveWerewolfIDs()
	if len(ids) != 2 || ids[0] != "w1" || ids[1] != "w2" {
		t.Fatalf("AliveWerewolfIDs() = %v", ids)
	}

	s.mu.Lock()
	s.players["w1"].IsAlive = false
	s.mu.Unlock()

	ids = s.AliveWerewolfIDs()
	if len(ids) != 1 || ids[0] != "w2" {
		t.Fatalf("AliveWerewolfIDs() after death = %v", ids)
	}
}

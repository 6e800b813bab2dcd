package ai

import (
	"context"
	"strings"
	"testing"

	"moonhollow/internal/model"
)

func scriptedContext() *PlayerContext {
	return &PlayerContext{
		PlayerID:    "me",
		PlayerName:  "Hazel",
		Role:        model.RoleVillager,
		Team:        model.TeamTown,
		Phase:       model.PhaseDay,
		Alive:       []Candidate{{ID: "me", Name: "Hazel"}, {ID: "a", Name: "Ash"}, {ID: "b", Name: "Birch"}},
		MaxMessages: 5,
	}
}

func TestScriptedChatRespectsCap(t *testing.T) {
	s := NewScriptedStrategy()
	pc := scriptedContext()
	pc.MessagesSent = pc.MaxMessages

	msg, err := s.DecideChat(context.Background(), pc)
	if err != nil {
		t.Fatalf("DecideChat: %v", err)
	}
	if msg != "" {
		t.Fatalf("capped player still chatted: %q", msg)
	}
}

func TestScriptedChatNeverNamesSelf(t *testing.T) {
	s := NewScriptedStrategy()
	pc := scriptedContext()
	pc.Team = model.TeamMafia // raise the accusation rate

	for i := 0; i < 200; i++ {
		msg, err := s.DecideChat(context.Background(), pc)
		if err != nil {
			t.Fatalf("DecideChat: %v", err)
		}
		if msg == "" {
			continue
		}
		if strings.Contains(msg, "Hazel") {
			t.Fatalf("player accused themselves: %q", msg)
		}
	}
}

func TestScriptedVotePicksLegalTarget(t *testing.T) {
	s := NewScriptedStrategy()
	pc := scriptedContext()
	targets := []Candidate{{ID: "a", Name: "Ash"}, {ID: "b", Name: "Birch"}}

	for i := 0; i < 50; i++ {
		id, err := s.ChooseVoteTarget(context.Background(), pc, targets)
		if err != nil {
			t.Fatalf("ChooseVoteTarget: %v", err)
		}
		if id != "a" && id != "b" {
			t.Fatalf("illegal vote target %q", id)
		}
	}
}

func TestScriptedVoteNoTargets(t *testing.T) {
	s := NewScriptedStrategy()
	id, err := s.ChooseVoteTarget(context.Background(), scriptedContext(), nil)
	if err != nil {
		t.Fatalf("ChooseVoteTarget: %v", err)
	}
	if id != "" {
		t.Fatalf("vote with no candidates returned %q", id)
	}
}

func TestScriptedSeerAvoidsInvestigated(t *testing.T) {
	s := NewScriptedStrategy()
	pc := scriptedContext()
	pc.Role = model.RoleSeer
	pc.SeerResults = []SeerResult{{TargetName: "Ash", IsWerewolf: false}}
	targets := []Candidate{{ID: "a", Name: "Ash"}, {ID: "b", Name: "Birch"}}

	for i := 0; i < 50; i++ {
		id, err := s.ChooseNightTarget(context.Background(), pc, targets)
		if err != nil {
			t.Fatalf("ChooseNightTarget: %v", err)
		}
		if id != "b" {
			t.Fatalf("seer re-investigated a known player: %q", id)
		}
	}
}

func TestScriptedSeerFallsBackWhenAllInvestigated(t *testing.T) {
	s := NewScriptedStrategy()
	pc := scriptedContext()
	pc.Role = model.RoleSeer
	pc.SeerResults = []SeerResult{
		{TargetName: "Ash", IsWerewolf: false},
		{TargetName: "Birch", IsWerewolf: false},
	}
	targets := []Candidate{{ID: "a", Name: "Ash"}, {ID: "b", Name: "Birch"}}

	id, err := s.ChooseNightTarget(context.Background(), pc, targets)
	if err != nil {
		t.Fatalf("ChooseNightTarget: %v", err)
	}
	if id != "a" && id != "b" {
		t.Fatalf("illegal fallback target %q", id)
	}
}

func TestScriptedNotesPassThrough(t *testing.T) {
	s := NewScriptedStrategy()
	pc := scriptedContext()
	pc.Notes = "existing notes"

	notes, err := s.UpdateNotes(context.Background(), pc)
	if err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}
	if notes != "existing notes" {
		t.Fatalf("notes changed to %q", notes)
	}
}

package ai

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"moonhollow/internal/model"
)

var generalMessages = []string{
	"Anyone have any suspicions?",
	"I'm not sure who to trust here...",
	"Let's think about this logically.",
	"Something feels off today.",
	"Who's been acting weird?",
	"I have a bad feeling about this.",
	"We need to find the wolves.",
	"Stay focused everyone.",
	"Don't let them trick us.",
	"What do you all think?",
}

var accusationMessages = []string{
	"I think %s is suspicious.",
	"Has anyone else noticed %s being quiet?",
	"%s seems nervous to me.",
	"I'm getting bad vibes from %s.",
	"Why is %s so defensive?",
}

var werewolfMessages = []string{
	"We should vote for %s.",
	"What about %s? They seem suspicious.",
	"I think %s could be the seer.",
}

// ScriptedStrategy is the rule-based decision maker used when no LLM backend
// is configured, and as the fallback when the LLM misbehaves.
type ScriptedStrategy struct{}

// NewScriptedStrategy creates the template-driven strategy
func NewScriptedStrategy() *ScriptedStrategy {
	return &ScriptedStrategy{}
}

func (s *ScriptedStrategy) DecideChat(ctx context.Context, pc *PlayerContext) (string, error) {
	if pc.MessagesSent >= pc.MaxMessages {
		return "", nil
	}
	// Chat only occasionally so the room isn't flooded
	if rand.Float64() > 0.3 {
		return "", nil
	}

	others := make([]string, 0, len(pc.Alive))
	for _, c := range pc.Alive {
		if c.ID != pc.PlayerID {
			others = append(others, c.Name)
		}
	}

	if pc.Team == model.TeamMafia && rand.Float64() < 0.4 && len(others) > 0 {
		return fmt.Sprintf(pick(werewolfMessages), others[rand.Intn(len(others))]), nil
	}
	if rand.Float64() < 0.3 && len(others) > 0 {
		return fmt.Sprintf(pick(accusationMessages), others[rand.Intn(len(others))]), nil
	}
	return pick(generalMessages), nil
}

func (s *ScriptedStrategy) ChooseVoteTarget(ctx context.Context, pc *PlayerContext, targets []Candidate) (string, error) {
	return randomTarget(targets), nil
}

func (s *ScriptedStrategy) ChooseNightTarget(ctx context.Context, pc *PlayerContext, targets []Candidate) (string, error) {
	// Seers prefer someone they haven't investigated yet
	if pc.Role == model.RoleSeer && len(pc.SeerResults) > 0 {
		seen := make(map[string]bool, len(pc.SeerResults))
		for _, r := range pc.SeerResults {
			seen[strings.ToLower(r.TargetName)] = true
		}
		fresh := make([]Candidate, 0, len(targets))
		for _, t := range targets {
			if !seen[strings.ToLower(t.Name)] {
				fresh = append(fresh, t)
			}
		}
		if len(fresh) > 0 {
			return randomTarget(fresh), nil
		}
	}
	return randomTarget(targets), nil
}

func (s *ScriptedStrategy) UpdateNotes(ctx context.Context, pc *PlayerContext) (string, error) {
	// Scripted players keep no notes
	return pc.Notes, nil
}

func randomTarget(targets []Candidate) string {
	if len(targets) == 0 {
		return ""
	}
	return targets[rand.Intn(len(targets))].ID
}

func pick(options []string) string {
	return options[rand.Intn(len(options))]
}

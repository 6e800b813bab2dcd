package ai

import (
	"fmt"
	"strings"

	"moonhollow/internal/model"
)

var roleStrategies = map[model.Role]string{
	model.RoleVillager: `You are a villager. You have no special powers.
Pay close attention to voting patterns and who accuses whom. Werewolves often
deflect suspicion or stay quiet. Build consensus with other town players and
avoid getting eliminated yourself.`,

	model.RoleWerewolf: `You are a werewolf. Blend in during the day and never
reveal your team. Subtly steer suspicion toward town players, especially ones
who might be the seer. Coordinate kills with your fellow wolves at night and
avoid voting in lockstep with them during the day.`,

	model.RoleSeer: `You are the seer. Each night you learn whether one player
is a werewolf. Keep your role hidden early so the wolves don't kill you, and
use your investigation results to guide the town's votes without making it
obvious how you know.`,

	model.RoleDoctor: `You are the doctor. Each night you protect one player
from the werewolf kill. Protect likely wolf targets, including yourself when
you feel exposed. Keep your role hidden so the wolves can't play around you.`,
}

func systemInstruction(pc *PlayerContext) string {
	return fmt.Sprintf(`You are %s, playing a social deduction game similar to Werewolf/Mafia.

Your role is %s on team %s.

Rules:
- Town wins if all werewolves are eliminated
- Werewolves win if they equal or outnumber town
- Be natural and human-like in your responses
- Stay in character at all times
- Keep messages concise (1-2 sentences typically)`, pc.PlayerName, pc.Role, pc.Team)
}

func formatContext(pc *PlayerContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Your name: %s\n", pc.PlayerName)
	fmt.Fprintf(&b, "Your role: %s\n", pc.Role)
	fmt.Fprintf(&b, "Your team: %s\n", pc.Team)
	fmt.Fprintf(&b, "Current phase: %s\n", pc.Phase)
	fmt.Fprintf(&b, "Round number: %d\n\n", pc.RoundNumber)

	b.WriteString("Alive players:\n")
	for _, p := range pc.Alive {
		marker := ""
		if p.ID == pc.PlayerID {
			marker = " (you)"
		}
		fmt.Fprintf(&b, "  - %s%s\n", p.Name, marker)
	}
	b.WriteString("\n")

	if len(pc.Dead) > 0 {
		b.WriteString("Dead players:\n")
		for _, p := range pc.Dead {
			fmt.Fprintf(&b, "  - %s\n", p.Name)
		}
		b.WriteString("\n")
	}

	if pc.Role == model.RoleWerewolf && len(pc.FellowWolves) > 0 {
		b.WriteString("Fellow werewolves:\n")
		for _, id := range pc.FellowWolves {
			name := pc.PlayerNames[id]
			if name == "" {
				name = id
			}
			fmt.Fprintf(&b, "  - %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(pc.Messages) > 0 {
		b.WriteString("Recent chat:\n")
		msgs := pc.Messages
		if len(msgs) > 20 {
			msgs = msgs[len(msgs)-20:]
		}
		for _, m := range msgs {
			fmt.Fprintf(&b, "  [%s]: %s\n", m.PlayerName, m.Content)
		}
		b.WriteString("\n")
	}

	if len(pc.VoteCounts) > 0 {
		b.WriteString("Current vote counts:\n")
		for targetID, count := range pc.VoteCounts {
			name := pc.PlayerNames[targetID]
			if name == "" {
				name = targetID
			}
			fmt.Fprintf(&b, "  - %s: %d votes\n", name, count)
		}
		b.WriteString("\n")
	}

	if len(pc.SeerResults) > 0 {
		b.WriteString("Your investigation results:\n")
		for _, r := range pc.SeerResults {
			verdict := "Not a werewolf"
			if r.IsWerewolf {
				verdict = "Werewolf"
			}
			fmt.Fprintf(&b, "  - %s: %s\n", r.TargetName, verdict)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func notesSection(notes string) string {
	if notes == "" {
		return "(No notes yet)"
	}
	return notes
}

func targetsSection(targets []Candidate) string {
	lines := make([]string, 0, len(targets))
	for _, t := range targets {
		lines = append(lines, fmt.Sprintf("  - %s: id=%s", t.Name, t.ID))
	}
	return strings.Join(lines, "\n")
}

func chatPrompt(pc *PlayerContext) string {
	return fmt.Sprintf(`# Strategy Guide
%s

# Your Notes
%s

# Current Game State
%s

# Your Task
Decide whether to send a chat message right now. Consider:
- The flow of conversation
- Whether you have something valuable to add
- Not chatting too frequently (you've sent %d messages this phase)
- Staying in character and being natural

Respond with a JSON object:
{
    "send": true or false,
    "message": "Your message content if send is true, otherwise empty string",
    "reasoning": "Brief internal reasoning (1 sentence)"
}`, roleStrategies[pc.Role], notesSection(pc.Notes), formatContext(pc), pc.MessagesSent)
}

func votePrompt(pc *PlayerContext, targets []Candidate) string {
	return fmt.Sprintf(`# Strategy Guide
%s

# Your Notes
%s

# Current Game State
%s

# Valid Vote Targets (use the id value, not the name)
%s

# Your Task
Choose who to vote for elimination. Consider:
- Evidence from chat discussions
- Voting patterns you've observed
- Your strategic goals based on your role
- Who is most likely to be a threat to your team

IMPORTANT: You MUST use the exact id value from the targets list, NOT the player's name.

Respond with a JSON object:
{
    "target": "the exact id value from the list above",
    "reasoning": "Brief internal reasoning for this choice (1-2 sentences)"
}`, roleStrategies[pc.Role], notesSection(pc.Notes), formatContext(pc), targetsSection(targets))
}

func nightActionPrompt(pc *PlayerContext, targets []Candidate) string {
	action := "Choose a target for your night action"
	switch pc.Role {
	case model.RoleWerewolf:
		action = "Choose a player to kill tonight"
	case model.RoleSeer:
		action = "Choose a player to investigate (learn if they are a werewolf)"
	case model.RoleDoctor:
		action = "Choose a player to protect from the werewolf kill tonight"
	}

	return fmt.Sprintf(`# Strategy Guide
%s

# Your Notes
%s

# Current Game State
%s

# Valid Targets (use the id value, not the name)
%s

# Your Task
%s

Consider:
- Information gathered during the day
- Strategic value of each target
- Your role's specific objectives
- Who the other team might target (for Doctor)

IMPORTANT: You MUST use the exact id value from the targets list, NOT the player's name.

Respond with a JSON object:
{
    "target": "the exact id value from the list above",
    "reasoning": "Brief internal reasoning for this choice (1-2 sentences)"
}`, roleStrategies[pc.Role], notesSection(pc.Notes), formatContext(pc), targetsSection(targets), action)
}

func notesPrompt(pc *PlayerContext) string {
	return fmt.Sprintf(`# Your Current Notes
%s

# Current Game State
%s

# Your Task
Update your notes for the next phase. Your notes should include:
- Suspicion levels for each player (scale: trusted / neutral / suspicious / very suspicious)
- Key observations from this phase (voting patterns, accusations, defenses)
- Your current strategy thoughts
- Any claims or reveals made

Keep notes concise but comprehensive. Maximum ~500 words.
Write your updated notes as plain text (not JSON).`, notesSection(pc.Notes), formatContext(pc))
}

package ai

import (
	"context"
	"log"
	"unicode/utf8"

	"moonhollow/internal/config"
)

// LLMStrategy makes decisions through the Gemini API. Any failure degrades
// to the scripted strategy so a flaky backend never stalls a game.
type LLMStrategy struct {
	client    *GeminiClient
	fallback  *ScriptedStrategy
	maxTokens int
}

// NewLLMStrategy creates the Gemini-backed strategy
func NewLLMStrategy(cfg *config.AIConfig) *LLMStrategy {
	return &LLMStrategy{
		client:    NewGeminiClient(cfg),
		fallback:  NewScriptedStrategy(),
		maxTokens: cfg.MaxNotesTokens,
	}
}

type chatDecision struct {
	Send      bool   `json:"send"`
	Message   string `json:"message"`
	Reasoning string `json:"reasoning"`
}

type targetDecision struct {
	Target    string `json:"target"`
	Reasoning string `json:"reasoning"`
}

func (s *LLMStrategy) DecideChat(ctx context.Context, pc *PlayerContext) (string, error) {
	response, err := s.client.Generate(ctx, systemInstruction(pc), chatPrompt(pc), true)
	if err != nil {
		log.Printf("LLM chat decision failed for %s: %v", pc.PlayerName, err)
		return s.fallback.DecideChat(ctx, pc)
	}

	var decision chatDecision
	if err := parseJSONResponse(response, &decision); err != nil {
		log.Printf("LLM chat response unparseable for %s: %v", pc.PlayerName, err)
		return s.fallback.DecideChat(ctx, pc)
	}
	if !decision.Send {
		return "", nil
	}
	return decision.Message, nil
}

func (s *LLMStrategy) ChooseVoteTarget(ctx context.Context, pc *PlayerContext, targets []Candidate) (string, error) {
	if len(targets) == 0 {
		return "", nil
	}

	response, err := s.client.Generate(ctx, systemInstruction(pc), votePrompt(pc, targets), true)
	if err != nil {
		log.Printf("LLM vote decision failed for %s: %v", pc.PlayerName, err)
		return s.fallback.ChooseVoteTarget(ctx, pc, targets)
	}

	var decision targetDecision
	if err := parseJSONResponse(response, &decision); err != nil {
		return s.fallback.ChooseVoteTarget(ctx, pc, targets)
	}

	if id := extractTargetID(decision.Target, candidateIDs(targets)); id != "" {
		log.Printf("LLM %s voting for %s: %s", pc.PlayerName, id, decision.Reasoning)
		return id, nil
	}
	log.Printf("LLM %s returned invalid vote target %q", pc.PlayerName, decision.Target)
	return s.fallback.ChooseVoteTarget(ctx, pc, targets)
}

func (s *LLMStrategy) ChooseNightTarget(ctx context.Context, pc *PlayerContext, targets []Candidate) (string, error) {
	if len(targets) == 0 {
		return "", nil
	}

	response, err := s.client.Generate(ctx, systemInstruction(pc), nightActionPrompt(pc, targets), true)
	if err != nil {
		log.Printf("LLM night action failed for %s: %v", pc.PlayerName, err)
		return s.fallback.ChooseNightTarget(ctx, pc, targets)
	}

	var decision targetDecision
	if err := parseJSONResponse(response, &decision); err != nil {
		return s.fallback.ChooseNightTarget(ctx, pc, targets)
	}

	if id := extractTargetID(decision.Target, candidateIDs(targets)); id != "" {
		log.Printf("LLM %s (%s) targeting %s: %s", pc.PlayerName, pc.Role, id, decision.Reasoning)
		return id, nil
	}
	return s.fallback.ChooseNightTarget(ctx, pc, targets)
}

func (s *LLMStrategy) UpdateNotes(ctx context.Context, pc *PlayerContext) (string, error) {
	response, err := s.client.Generate(ctx, "", notesPrompt(pc), false)
	if err != nil {
		// Keep the existing notes on failure
		return pc.Notes, err
	}
	return truncateToTokens(response, s.maxTokens), nil
}

func candidateIDs(targets []Candidate) []string {
	ids := make([]string, len(targets))
	for i, t := range targets {
		ids[i] = t.ID
	}
	return ids
}

// truncateToTokens approximates a token budget at ~4 chars per token,
// cutting on a rune boundary
func truncateToTokens(text string, maxTokens int) string {
	maxChars := maxTokens * 4
	if len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

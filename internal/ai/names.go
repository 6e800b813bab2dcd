package ai

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

var aiNames = []string{
	"Alex", "Jordan", "Taylor", "Morgan", "Casey",
	"Riley", "Quinn", "Avery", "Blake", "Cameron",
	"Dakota", "Emery", "Finley", "Hayden", "Jamie",
}

// newAIID generates a unique id for an AI player
func newAIID() string {
	return "ai_" + uuid.New().String()[:8]
}

// pickName returns a random unused name, falling back to a numbered one
func pickName(taken []string) string {
	inUse := make(map[string]bool, len(taken))
	for _, n := range taken {
		inUse[n] = true
	}

	available := make([]string, 0, len(aiNames))
	for _, n := range aiNames {
		if !inUse[n] {
			available = append(available, n)
		}
	}
	if len(available) == 0 {
		return fmt.Sprintf("Player%d", 100+rand.Intn(900))
	}
	return available[rand.Intn(len(available))]
}

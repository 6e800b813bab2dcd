package config

import (
	"os"
	"time"
)

// AIConfig holds all AI-player-related configuration
type AIConfig struct {
	APIKey     string `json:"-"` // Never serialize
	BaseURL    string `json:"baseUrl"`
	Model      string `json:"model"`
	TimeoutMS  int    `json:"timeoutMs"`
	MaxRetries int    `json:"maxRetries"`

	// Behavior tuning for AI players
	ChatIntervalMin time.Duration
	ChatIntervalMax time.Duration
	StaggerMin      time.Duration
	StaggerMax      time.Duration
	MaxNotesTokens  int
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		BaseURL:    "https://generativelanguage.googleapis.com/v1beta/models",
		Model:      getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		TimeoutMS:  getEnvInt("GEMINI_TIMEOUT_MS", 10000),
		MaxRetries: getEnvInt("GEMINI_MAX_RETRIES", 2),

		ChatIntervalMin: 10 * time.Second,
		ChatIntervalMax: 15 * time.Second,
		StaggerMin:      500 * time.Millisecond,
		StaggerMax:      time.Second,
		MaxNotesTokens:  getEnvInt("AI_MAX_NOTES_TOKENS", 2000),
	}
}

// IsEnabled returns true if the LLM backend is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full generateContent endpoint for the model
func (c *AIConfig) ModelEndpoint() string {
	return c.BaseURL + "/" + c.Model + ":generateContent"
}

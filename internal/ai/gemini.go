package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"moonhollow/internal/config"
)

var (
	// ErrGeminiUnavailable means the circuit breaker is open
	ErrGeminiUnavailable = errors.New("gemini: too many consecutive failures")
	// ErrGeminiEmpty means the API returned no candidates
	ErrGeminiEmpty = errors.New("gemini: empty response")
)

const circuitBreakerThreshold = 5

// GeminiClient calls the Gemini generateContent endpoint with retry,
// exponential backoff and a simple circuit breaker.
type GeminiClient struct {
	cfg    *config.AIConfig
	client *http.Client

	consecutiveFailures atomic.Int32
}

// NewGeminiClient creates a client from the AI config
func NewGeminiClient(cfg *config.AIConfig) *GeminiClient {
	return &GeminiClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Generate sends a prompt and returns the raw text of the first candidate.
// Set jsonMode to ask the model for a JSON response body.
func (g *GeminiClient) Generate(ctx context.Context, systemInstruction, prompt string, jsonMode bool) (string, error) {
	if g.consecutiveFailures.Load() >= circuitBreakerThreshold {
		return "", ErrGeminiUnavailable
	}

	var lastErr error
	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := g.call(ctx, systemInstruction, prompt, jsonMode)
		if err == nil {
			g.consecutiveFailures.Store(0)
			return text, nil
		}
		lastErr = err
		log.Printf("Gemini request failed (attempt %d/%d): %v", attempt+1, g.cfg.MaxRetries+1, err)
	}

	g.consecutiveFailures.Add(1)
	return "", lastErr
}

// ResetCircuitBreaker clears the failure counter
func (g *GeminiClient) ResetCircuitBreaker() {
	g.consecutiveFailures.Store(0)
}

func (g *GeminiClient) call(ctx context.Context, systemInstruction, prompt string, jsonMode bool) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.7,
			"maxOutputTokens": 1024,
		},
	}
	if jsonMode {
		reqBody["generationConfig"].(map[string]interface{})["responseMimeType"] = "application/json"
	}
	if systemInstruction != "" {
		reqBody["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]string{
				{"text": systemInstruction},
			},
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", g.cfg.ModelEndpoint(), g.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: status %d", resp.StatusCode)
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", ErrGeminiEmpty
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// parseJSONResponse unmarshals a model response into out, tolerating
// markdown fences and surrounding prose around the JSON object.
func parseJSONResponse(response string, out interface{}) error {
	if err := json.Unmarshal([]byte(response), out); err == nil {
		return nil
	}

	if m := fencedJSON.FindStringSubmatch(response); m != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), out); err == nil {
			return nil
		}
	}

	if start := strings.Index(response, "{"); start >= 0 {
		if end := strings.LastIndex(response, "}"); end > start {
			if err := json.Unmarshal([]byte(response[start:end+1]), out); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("gemini: no valid JSON in response")
}

// extractTargetID normalizes a model-chosen target against the legal ids.
// Models sometimes answer with "id=xyz" or "Alex: id=xyz" instead of the
// bare id.
func extractTargetID(target string, validIDs []string) string {
	if target == "" {
		return ""
	}
	for _, id := range validIDs {
		if target == id {
			return id
		}
	}
	for _, id := range validIDs {
		if strings.Contains(target, id) {
			return id
		}
	}

	cleaned := strings.TrimSpace(target)
	for _, prefix := range []string{"id=", "id:", "target=", "target:"} {
		if strings.HasPrefix(strings.ToLower(cleaned), prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
			for _, id := range validIDs {
				if cleaned == id {
					return id
				}
			}
		}
	}
	return ""
}

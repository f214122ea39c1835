// Package generation talks to an OpenAI-compatible chat completions API. It
// classifies raw captures into structured log payloads and answers chat
// turns over the assembled memory block.
package generation

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"lifelog/internal/models"
	"lifelog/internal/normalize"
)

// Client is the generation collaborator. The server runs without one; the
// endpoints that need it report themselves unavailable instead.
type Client interface {
	Classify(ctx context.Context, memory, text string) (normalize.Payload, error)
	Answer(ctx context.Context, memory string, history []models.ChatMessage, text string) (string, error)
}

// Config carries the connection settings for the chat completions API.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// FromEnv assembles a Config from LLM_* variables, applying defaults for
// everything but the API key.
func FromEnv() Config {
	cfg := Config{
		BaseURL: "https://api.openai.com/v1",
		APIKey:  os.Getenv("LLM_API_KEY"),
		Model:   "gpt-4o-mini",
		Timeout: 30 * time.Second,
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

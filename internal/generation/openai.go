package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"lifelog/internal/models"
	"lifelog/internal/normalize"
)

const classifySystemPrompt = `You are a life-logging assistant. Turn the user's message into a structured log entry, using the recent context to resolve references like "again" or "the same gym".

RESPONSE FORMAT:
Respond ONLY with valid JSON in the following format:
{
  "log": {"description": "one sentence summary", "user_input": "the user's original words"},
  "classification": {"domain": "Work|Health|Finance|Social|Growth|Leisure|General", "activity": "short activity name"},
  "moodScore": 1-10,
  "energyLevel": 1-10,
  "productivityScore": 1-10,
  "stressLevel": 1-10 (omit if unclear),
  "satisfactionScore": 1-10 (omit if unclear),
  "location": "place name (omit if unknown)",
  "timeOfDay": "morning|afternoon|evening|night (omit if unknown)",
  "durationMinutes": minutes as a number (omit if unknown),
  "amount": money amount as a number (omit unless money is involved),
  "currency": "currency code (omit if unknown)",
  "sentiment": "positive|negative|neutral",
  "metadata": {"extra": "details worth keeping"},
  "action": {"action": "acknowledge|set_reminder|suggest", "priority": "low|medium|high"},
  "context": {"situational": "details"}
}
Do not include any other text or explanation.`

const answerSystemPrompt = `You are a personal life-logging companion. Answer the user's question grounded in their log history below. Be concise and concrete; when the history does not cover the question, say so instead of guessing.

LOG HISTORY:
%s`

// Message is one turn of a chat completions conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIClient implements Client against any OpenAI-compatible endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	return &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Classify asks the model for a structured payload describing the capture.
// The payload is still untrusted; normalization decides what survives.
func (c *OpenAIClient) Classify(ctx context.Context, memory, text string) (normalize.Payload, error) {
	messages := []Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: fmt.Sprintf("RECENT CONTEXT:\n%s\n\nUSER MESSAGE: %q", memory, text)},
	}

	raw, err := c.sendRequest(ctx, messages, 0.2)
	if err != nil {
		return normalize.Payload{}, err
	}

	var p normalize.Payload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return normalize.Payload{}, fmt.Errorf("parse classification: %w", err)
	}
	return p, nil
}

// Answer continues the conversation: memory block as system grounding, prior
// session turns in order, the new message last.
func (c *OpenAIClient) Answer(ctx context.Context, memory string, history []models.ChatMessage, text string) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: fmt.Sprintf(answerSystemPrompt, memory)})
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: "user", Content: text})

	return c.sendRequest(ctx, messages, 0.7)
}

func (c *OpenAIClient) sendRequest(ctx context.Context, messages []Message, temperature float64) (string, error) {
	body, err := json.Marshal(request{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API returned status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// stripFences unwraps a markdown code fence some models insist on adding
// around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

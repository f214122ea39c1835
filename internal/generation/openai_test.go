package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lifelog/internal/models"
)

func writeCompletion(w http.ResponseWriter, content string) {
	resp := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func testClient(url string) *OpenAIClient {
	return NewOpenAIClient(Config{
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
}

func TestClassifyParsesFencedPayload(t *testing.T) {
	var gotPath, gotAuth string
	var captured request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&captured)
		writeCompletion(w, "```json\n{\"log\": {\"description\": \"Morning run\", \"user_input\": \"ran 5k\"}, \"classification\": {\"domain\": \"Health\", \"activity\": \"Running\"}, \"moodScore\": 8}\n```")
	}))
	defer srv.Close()

	p, err := testClient(srv.URL).Classify(context.Background(), "No relevant log history.", "ran 5k this morning")
	require.NoError(t, err)
	require.Equal(t, "Morning run", p.Log.Description.Value)
	require.Equal(t, "Health", p.Classification.Domain.Value)
	require.True(t, p.MoodScore.Valid)
	require.Equal(t, 8.0, p.MoodScore.Value)

	require.Equal(t, "/chat/completions", gotPath)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	require.Equal(t, "system", captured.Messages[0].Role)
	require.Contains(t, captured.Messages[0].Content, "Respond ONLY with valid JSON")
	require.Contains(t, captured.Messages[1].Content, "RECENT CONTEXT:")
	require.Contains(t, captured.Messages[1].Content, "ran 5k this morning")
}

func TestClassifyRejectsNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "Sure, I logged that for you!")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Classify(context.Background(), "", "hello")
	require.ErrorContains(t, err, "parse classification")
}

func TestAnswerThreadsHistory(t *testing.T) {
	var captured request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		writeCompletion(w, "About 10k in total.")
	}))
	defer srv.Close()

	history := []models.ChatMessage{
		{Role: "user", Content: "did I run this week?"},
		{Role: "assistant", Content: "Yes, twice."},
	}
	memory := "- [2026-08-20] Health/Running: Morning run (mood 7, energy 8, productivity 6)"

	answer, err := testClient(srv.URL).Answer(context.Background(), memory, history, "how far in total?")
	require.NoError(t, err)
	require.Equal(t, "About 10k in total.", answer)

	require.Len(t, captured.Messages, 4)
	require.Equal(t, "system", captured.Messages[0].Role)
	require.Contains(t, captured.Messages[0].Content, "LOG HISTORY:")
	require.Contains(t, captured.Messages[0].Content, "Morning run")
	require.Equal(t, Message{Role: "user", Content: "did I run this week?"}, captured.Messages[1])
	require.Equal(t, Message{Role: "assistant", Content: "Yes, twice."}, captured.Messages[2])
	require.Equal(t, Message{Role: "user", Content: "how far in total?"}, captured.Messages[3])
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Classify(context.Background(), "", "hello")
	require.ErrorContains(t, err, "status 500")
}

func TestEmptyChoicesIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Answer(context.Background(), "", nil, "hello")
	require.ErrorContains(t, err, "no choices")
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, stripFences(tt.in))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LLM_TIMEOUT_SECONDS", "")

	cfg := FromEnv()
	require.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	require.Empty(t, cfg.APIKey)
	require.Equal(t, "gpt-4o-mini", cfg.Model)
	require.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1/")
	t.Setenv("LLM_API_KEY", "local")
	t.Setenv("LLM_MODEL", "llama3")
	t.Setenv("LLM_TIMEOUT_SECONDS", "10")

	cfg := FromEnv()
	require.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	require.Equal(t, "local", cfg.APIKey)
	require.Equal(t, "llama3", cfg.Model)
	require.Equal(t, 10*time.Second, cfg.Timeout)
}

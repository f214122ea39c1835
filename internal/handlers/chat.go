package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lifelog/internal/generation"
	"lifelog/internal/middleware"
	"lifelog/internal/models"
	"lifelog/internal/retrieval"
)

type ChatHandler struct {
	db     *sqlx.DB
	engine *retrieval.Engine
	llm    generation.Client
}

func NewChatHandler(db *sqlx.DB, engine *retrieval.Engine, llm generation.Client) *ChatHandler {
	return &ChatHandler{db: db, engine: engine, llm: llm}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Converse answers one chat turn grounded in the caller's log history and
// persists both sides of the exchange under the session id.
func (h *ChatHandler) Converse(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if h.llm == nil {
		http.Error(w, "generation not configured", http.StatusServiceUnavailable)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}
	message := strings.TrimSpace(req.Message)

	sessionID := uuid.New()
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			http.Error(w, "invalid session_id", http.StatusBadRequest)
			return
		}
		sessionID = parsed
	}

	var history []models.ChatMessage
	err := h.db.SelectContext(r.Context(), &history, `
		SELECT id, user_id, session_id, role, content, created_at
		FROM chat_messages
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at ASC`, userID, sessionID)
	if err != nil {
		http.Error(w, "could not load history", http.StatusInternalServerError)
		return
	}

	summaries, err := h.engine.AssembleChatContext(r.Context(), userID, message)
	if err != nil {
		slog.Warn("retrieval degraded; answering without context", slog.Any("err", err))
		summaries = nil
	}
	memory := retrieval.FormatMemoryBlock(summaries)

	if _, err := h.db.ExecContext(r.Context(),
		`INSERT INTO chat_messages (user_id, session_id, role, content) VALUES ($1, $2, 'user', $3)`,
		userID, sessionID, message); err != nil {
		http.Error(w, "could not save message", http.StatusInternalServerError)
		return
	}

	reply, err := h.llm.Answer(r.Context(), memory, history, message)
	if err != nil {
		http.Error(w, "generation failed", http.StatusBadGateway)
		return
	}

	if _, err := h.db.ExecContext(r.Context(),
		`INSERT INTO chat_messages (user_id, session_id, role, content) VALUES ($1, $2, 'assistant', $3)`,
		userID, sessionID, reply); err != nil {
		http.Error(w, "could not save message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"reply":      reply,
	})
}

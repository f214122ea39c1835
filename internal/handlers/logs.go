package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lifelog/internal/generation"
	"lifelog/internal/middleware"
	"lifelog/internal/models"
	"lifelog/internal/normalize"
	"lifelog/internal/retrieval"
)

type LogsHandler struct {
	saver  *normalize.Saver
	engine *retrieval.Engine
	llm    generation.Client
}

func NewLogsHandler(saver *normalize.Saver, engine *retrieval.Engine, llm generation.Client) *LogsHandler {
	return &LogsHandler{saver: saver, engine: engine, llm: llm}
}

// Create stores a pre-classified payload as a log entry.
func (h *LogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var p normalize.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	res, err := h.saver.SaveClassifiedLog(r.Context(), userID, p)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "could not save log: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"log_id":      res.LogID,
		"domain_id":   res.DomainID,
		"activity_id": res.ActivityID,
	})
}

type autoLogRequest struct {
	Text string `json:"text"`
}

// AutoCreate runs the full capture flow: assemble the memory block, ask the
// generation collaborator to classify the raw text, persist whatever survives
// normalization.
func (h *LogsHandler) AutoCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if h.llm == nil {
		http.Error(w, "generation not configured", http.StatusServiceUnavailable)
		return
	}
	var req autoLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)

	// A broken read side must not block capture.
	summaries, err := h.engine.PriorContext(r.Context(), userID, text, retrieval.MinimalFilter{})
	if err != nil {
		slog.Warn("retrieval degraded; classifying without context", slog.Any("err", err))
		summaries = nil
	}
	memory := retrieval.FormatMemoryBlock(summaries)

	payload, err := h.llm.Classify(r.Context(), memory, text)
	if err != nil {
		http.Error(w, "classification failed", http.StatusBadGateway)
		return
	}
	// The stored capture is the user's words, whatever the model echoed back.
	payload.Log.UserInput = normalize.Text{Value: text, Valid: true}

	res, err := h.saver.SaveClassifiedLog(r.Context(), userID, payload)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "could not save log: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"log_id":      res.LogID,
		"domain_id":   res.DomainID,
		"activity_id": res.ActivityID,
	})
}

// Search runs a full-text query over the caller's history.
func (h *LogsHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}

	results, err := h.engine.Search(r.Context(), userID, q, retrieval.MinimalFilter{})
	if err != nil {
		http.Error(w, "could not search", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.LogSummary{}
	}
	writeJSON(w, http.StatusOK, results)
}

// Recent returns the caller's entries from the trailing window of days,
// default seven.
func (h *LogsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = n
	}

	entries, err := h.engine.Recent(r.Context(), userID, days)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toLogEntryDTOs(entries))
}

// List returns the caller's entries, optionally bounded by start_date,
// end_date (both YYYY-MM-DD, inclusive) and domain_id.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()

	var filter retrieval.ListFilter
	if s := q.Get("start_date"); s != "" {
		startDate, err := time.Parse("2006-01-02", s)
		if err != nil {
			http.Error(w, "invalid start_date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.Start = &startDate
	}
	if s := q.Get("end_date"); s != "" {
		endDate, err := time.Parse("2006-01-02", s)
		if err != nil {
			http.Error(w, "invalid end_date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		endOfDay := endDate.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.End = &endOfDay
	}
	if s := q.Get("domain_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 1 {
			http.Error(w, "invalid domain_id", http.StatusBadRequest)
			return
		}
		filter.DomainID = &id
	}

	entries, err := h.engine.List(r.Context(), userID, filter)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toLogEntryDTOs(entries))
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"lifelog/internal/middleware"
	"lifelog/internal/models"
)

type GoalsHandler struct {
	db *sqlx.DB
}

func NewGoalsHandler(db *sqlx.DB) *GoalsHandler { return &GoalsHandler{db: db} }

type goalRequest struct {
	Title      string `json:"title"`
	TargetDate string `json:"target_date"` // YYYY-MM-DD, optional
}

// Create adds a goal log entries can point at via goal_id.
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	var target *time.Time
	if req.TargetDate != "" {
		parsed, err := time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			http.Error(w, "invalid target_date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		target = &parsed
	}

	var g models.Goal
	err := h.db.QueryRowxContext(r.Context(),
		`INSERT INTO goals (user_id, title, target_date) VALUES ($1, $2, $3) RETURNING id, user_id, title, target_date, created_at`,
		userID, strings.TrimSpace(req.Title), target).StructScan(&g)
	if err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ToGoalDTO(g))
}

// List returns the caller's goals, newest first.
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var goals []models.Goal
	err := h.db.SelectContext(r.Context(), &goals,
		`SELECT id, user_id, title, target_date, created_at FROM goals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}

	out := make([]GoalDTO, 0, len(goals))
	for _, g := range goals {
		out = append(out, ToGoalDTO(g))
	}
	writeJSON(w, http.StatusOK, out)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"lifelog/internal/models"
)

type TaxonomyHandler struct {
	db *sqlx.DB
}

func NewTaxonomyHandler(db *sqlx.DB) *TaxonomyHandler { return &TaxonomyHandler{db: db} }

// ListDomains returns every domain, inactive ones included, sorted by name.
// The taxonomy is global, not per user.
func (h *TaxonomyHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	var domains []models.Domain
	err := h.db.SelectContext(r.Context(), &domains,
		`SELECT id, name, color, active, created_at FROM domains ORDER BY name`)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	if domains == nil {
		domains = []models.Domain{}
	}
	writeJSON(w, http.StatusOK, domains)
}

// ListActivities returns the activities under one domain.
func (h *TaxonomyHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid domain id", http.StatusBadRequest)
		return
	}

	var activities []models.Activity
	err = h.db.SelectContext(r.Context(), &activities,
		`SELECT id, name, domain_id, active, created_at FROM activities WHERE domain_id = $1 ORDER BY name`, id)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

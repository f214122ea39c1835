package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"lifelog/internal/middleware"
	"lifelog/internal/models"
	"lifelog/internal/normalize"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

// authedRequest builds a request carrying user id 7, the way RequireAuth
// would after a valid token.
func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(middleware.WithUserID(r.Context(), 7))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return m
}

func decodePayload(t *testing.T, raw string) normalize.Payload {
	t.Helper()
	var p normalize.Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func idRow(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(id)
}

func summaryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "domain", "activity", "description",
		"mood_score", "energy_level", "productivity_score", "created_at",
	})
}

func logEntryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "content", "description", "user_input", "domain_id", "activity_id",
		"mood_score", "energy_level", "productivity_score", "stress_level", "satisfaction_score",
		"metadata", "location", "time_of_day", "duration_minutes", "amount", "currency",
		"sentiment", "related_log_ids", "goal_id", "priority", "created_at",
	})
}

// fakeLLM stands in for the generation collaborator.
type fakeLLM struct {
	payload     normalize.Payload
	classifyErr error
	reply       string
	answerErr   error

	gotMemory  string
	gotText    string
	gotHistory []models.ChatMessage
}

func (f *fakeLLM) Classify(ctx context.Context, memory, text string) (normalize.Payload, error) {
	f.gotMemory, f.gotText = memory, text
	return f.payload, f.classifyErr
}

func (f *fakeLLM) Answer(ctx context.Context, memory string, history []models.ChatMessage, text string) (string, error) {
	f.gotMemory, f.gotText, f.gotHistory = memory, text, history
	return f.reply, f.answerErr
}

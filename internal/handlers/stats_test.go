package handlers

import (
	"database/sql/driver"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func aggregateRows(vals ...driver.Value) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"mood_week", "energy_week", "productivity_week",
		"mood_month", "energy_month", "productivity_month",
		"entries_week", "entries_total",
	}).AddRow(vals...)
}

func TestOverview(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewStatsHandler(db)

	mock.ExpectQuery("FILTER").
		WithArgs(int64(7)).
		WillReturnRows(aggregateRows(6.5, 5.0, 7.25, 6.0, 5.5, 6.75, 4, 120))
	mock.ExpectQuery("ROW_NUMBER").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
	mock.ExpectQuery("GROUP BY d.name").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "color", "entries"}).
			AddRow("Work", "#3B82F6", 9).
			AddRow("Health", "#10B981", 4))

	rr := httptest.NewRecorder()
	h.Overview(rr, authedRequest(http.MethodGet, "/api/stats/overview", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{
		"entries_week": 4,
		"entries_total": 120,
		"averages_week": {"mood": 6.5, "energy": 5.0, "productivity": 7.25},
		"averages_month": {"mood": 6.0, "energy": 5.5, "productivity": 6.75},
		"current_streak_days": 3,
		"domains_month": [
			{"name": "Work", "color": "#3B82F6", "entries": 9},
			{"name": "Health", "color": "#10B981", "entries": 4}
		]
	}`, rr.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverviewEmptyHistory(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewStatsHandler(db)

	mock.ExpectQuery("FILTER").
		WillReturnRows(aggregateRows(0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0, 0))
	mock.ExpectQuery("ROW_NUMBER").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectQuery("GROUP BY d.name").
		WillReturnRows(sqlmock.NewRows([]string{"name", "color", "entries"}))

	rr := httptest.NewRecorder()
	h.Overview(rr, authedRequest(http.MethodGet, "/api/stats/overview", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	require.Equal(t, float64(0), body["current_streak_days"])
	require.Equal(t, []any{}, body["domains_month"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverviewAggregateFailure(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewStatsHandler(db)

	mock.ExpectQuery("FILTER").
		WillReturnError(errors.New("statement timeout"))

	rr := httptest.NewRecorder()
	h.Overview(rr, authedRequest(http.MethodGet, "/api/stats/overview", ""))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestOverviewRequiresUser(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewStatsHandler(db)

	rr := httptest.NewRecorder()
	h.Overview(rr, httptest.NewRequest(http.MethodGet, "/api/stats/overview", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

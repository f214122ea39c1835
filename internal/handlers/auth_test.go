package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"})
}

// subjectOf verifies the token against the test secret and returns its sub
// claim.
func subjectOf(t *testing.T, token string) int64 {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return testSecret, nil })
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	sub, ok := parsed.Claims.(jwt.MapClaims)["sub"].(float64)
	require.True(t, ok)
	return int64(sub)
}

func TestSignupIssuesToken(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(db, testSecret)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("new@example.com", sqlmock.AnyArg()).
		WillReturnRows(userRows().AddRow(12, "new@example.com", "hash", time.Now()))

	rr := httptest.NewRecorder()
	h.Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email": "  New@Example.COM ", "password": "hunter22"}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	require.Equal(t, int64(12), subjectOf(t, body["token"].(string)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupValidation(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewAuthHandler(db, testSecret)

	for name, body := range map[string]string{
		"garbage":          `{{{`,
		"missing email":    `{"password": "hunter22"}`,
		"missing password": `{"email": "a@b.com"}`,
		"blank email":      `{"email": "   ", "password": "hunter22"}`,
	} {
		rr := httptest.NewRecorder()
		h.Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(db, testSecret)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	rr := httptest.NewRecorder()
	h.Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email": "taken@example.com", "password": "hunter22"}`)))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginChecksPassword(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(db, testSecret)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=$1")).
		WithArgs("me@example.com").
		WillReturnRows(userRows().AddRow(5, "me@example.com", string(hash), time.Now()))

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "me@example.com", "password": "hunter22"}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	require.Equal(t, int64(5), subjectOf(t, body["token"].(string)))
}

func TestLoginWrongPassword(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(db, testSecret)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=$1")).
		WillReturnRows(userRows().AddRow(5, "me@example.com", string(hash), time.Now()))

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "me@example.com", "password": "wrong"}`)))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(db, testSecret)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=$1")).
		WillReturnRows(userRows())

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "nobody@example.com", "password": "hunter22"}`)))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

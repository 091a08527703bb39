package web

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/racha-app/racha/internal/session"
	"github.com/racha-app/racha/internal/store"
)

// testDay matches the X-Local-Date header every test request carries, so
// streaks are evaluated against a fixed day.
const testDay = "2026-08-28"

const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id),
    name TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    archived BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE completions (
    task_id INTEGER NOT NULL REFERENCES tasks(id),
    completed_date DATE NOT NULL,
    PRIMARY KEY (task_id, completed_date)
);

CREATE TABLE groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    invite_code TEXT NOT NULL UNIQUE,
    created_by INTEGER NOT NULL REFERENCES users(id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE group_members (
    group_id INTEGER NOT NULL REFERENCES groups(id),
    user_id INTEGER NOT NULL REFERENCES users(id),
    PRIMARY KEY (group_id, user_id)
);
`

// testApp is a full handler stack over an in-memory database, with a
// cookie jar so a test can act as one browser across requests.
type testApp struct {
	router  http.Handler
	store   *store.Store
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	st := store.New(db)
	cfg := session.DefaultConfig(session.NewMemoryStore())
	cfg.Secure = false

	logger := zaptest.NewLogger(t)
	render, err := NewRenderer(logger)
	require.NoError(t, err)

	h := NewHandler(st, cfg, render, logger)
	return &testApp{router: h.Router(), store: st, cookies: map[string]*http.Cookie{}}
}

func (a *testApp) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, http.MethodGet, target, nil)
}

func (a *testApp) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return a.do(t, http.MethodPost, target, form)
}

func (a *testApp) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("X-Local-Date", testDay)
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	// Mimic a browser jar: later cookies win, expired ones are dropped.
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(a.cookies, c.Name)
		} else {
			a.cookies[c.Name] = c
		}
	}
	return rec
}

// register creates an account through the real registration flow and leaves
// the app logged in as that user.
func (a *testApp) register(t *testing.T, username string) *store.User {
	t.Helper()

	rec := a.post(t, "/register", url.Values{
		"username": {username},
		"email":    {username + "@test.com"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	user, err := a.store.UserByUsername(context.Background(), username)
	require.NoError(t, err)
	return user
}

func (a *testApp) logout(t *testing.T) {
	t.Helper()
	rec := a.post(t, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

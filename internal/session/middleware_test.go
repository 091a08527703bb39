package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	store := NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	config := DefaultConfig(store)
	config.Secure = false
	return config
}

func sessionCookie(t *testing.T, config *Config, resp *http.Response) *http.Cookie {
	t.Helper()
	// Login and logout append a second Set-Cookie for the same name; the
	// later one is the one the browser keeps.
	var found *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == config.CookieName {
			found = c
		}
	}
	return found
}

func TestMiddlewareCreatesSession(t *testing.T) {
	config := newTestConfig(t)

	var got *Session
	handler := Middleware(config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, got)
	assert.False(t, got.Authenticated())

	cookie := sessionCookie(t, config, rec.Result())
	require.NotNil(t, cookie)
	assert.Equal(t, got.ID, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestMiddlewareReusesSession(t *testing.T) {
	config := newTestConfig(t)
	mw := Middleware(config, zap.NewNop())

	var first, second *Session
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromContext(r.Context())
		if first == nil {
			first = sess
			sess.UserID = 11
		} else {
			second = sess
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(t, config, rec.Result())
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(11), second.UserID)
}

func TestMiddlewareUnknownCookieGetsFreshSession(t *testing.T) {
	config := newTestConfig(t)

	var got *Session
	handler := Middleware(config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: config.CookieName, Value: "stale-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.NotEqual(t, "stale-token", got.ID)
}

func TestLoginRotatesSessionID(t *testing.T) {
	config := newTestConfig(t)

	var before, after string
	handler := Middleware(config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromContext(r.Context())
		before = sess.ID
		require.NoError(t, Login(r.Context(), config, w, 42))
		after = sess.ID
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.NotEqual(t, before, after, "login must rotate the session ID")

	// The rotated session carries the user.
	sess, err := config.Store.Get(httptest.NewRequest(http.MethodGet, "/", nil).Context(), after)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sess.UserID)
}

func TestLogoutDestroysSession(t *testing.T) {
	config := newTestConfig(t)

	var id string
	login := Middleware(config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, Login(r.Context(), config, w, 42))
		id = FromContext(r.Context()).ID
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	logout := Middleware(config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, Logout(r.Context(), config, w))
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: config.CookieName, Value: id})
	logoutRec := httptest.NewRecorder()
	logout.ServeHTTP(logoutRec, req)

	_, err := config.Store.Get(req.Context(), id)
	assert.ErrorIs(t, err, ErrNotFound)

	cookie := sessionCookie(t, config, logoutRec.Result())
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0, "logout must expire the cookie")
}

func TestRequireUser(t *testing.T) {
	config := newTestConfig(t)
	mw := Middleware(config, zap.NewNop())

	protected := mw(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	// Anonymous request: redirected, not 401.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// Authenticated request passes through.
	var id string
	login := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, Login(r.Context(), config, w, 7))
		id = FromContext(r.Context()).ID
		w.WriteHeader(http.StatusOK)
	}))
	login.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: config.CookieName, Value: id})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserIDOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Zero(t, UserID(req.Context()))
	assert.Nil(t, FromContext(req.Context()))
}

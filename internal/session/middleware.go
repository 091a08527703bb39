package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"go.uber.org/zap"
)

type contextKey int

const sessionKey contextKey = iota

// Middleware loads the request's session from the store, creating a fresh
// anonymous one when the cookie is missing, unknown, or expired. The session
// is saved back to the store when the response is written. A store failure on
// load is treated as "no session": the visitor continues anonymous rather
// than seeing an error page.
func Middleware(config *Config, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *Session

			if cookie, err := r.Cookie(config.CookieName); err == nil && cookie.Value != "" {
				sess, err = config.Store.Get(r.Context(), cookie.Value)
				if err != nil && err != ErrNotFound && err != ErrExpired {
					logger.Warn("session load failed", zap.Error(err))
					sess = nil
				}
			}

			if sess == nil {
				id, err := generateID()
				if err != nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				sess = New(id, config.TTL())
			}

			http.SetCookie(w, &http.Cookie{
				Name:     config.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   config.MaxAge,
				HttpOnly: true,
				Secure:   config.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionKey, sess)

			sw := &saveWriter{
				ResponseWriter: w,
				session:        sess,
				config:         config,
				ctx:            ctx,
				logger:         logger,
			}
			next.ServeHTTP(sw, r.WithContext(ctx))

			// Handlers that never write still need their session changes
			// persisted.
			sw.save()
		})
	}
}

// saveWriter persists the session just before the first byte of the
// response, so handler mutations (login, flashes) are not lost.
type saveWriter struct {
	http.ResponseWriter
	session *Session
	config  *Config
	ctx     context.Context
	logger  *zap.Logger
	saved   bool
}

func (sw *saveWriter) WriteHeader(statusCode int) {
	sw.save()
	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *saveWriter) Write(b []byte) (int, error) {
	sw.save()
	return sw.ResponseWriter.Write(b)
}

func (sw *saveWriter) save() {
	if sw.saved {
		return
	}
	sw.saved = true
	if sw.session.destroyed {
		return
	}
	if err := sw.config.Store.Set(sw.ctx, sw.session.ID, sw.session, sw.config.TTL()); err != nil {
		sw.logger.Warn("session save failed", zap.String("session_id", sw.session.ID), zap.Error(err))
	}
}

// FromContext retrieves the request's session, or nil outside the
// middleware.
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(sessionKey).(*Session); ok {
		return sess
	}
	return nil
}

// Login marks the session authenticated as the given user and rotates the
// session ID to prevent fixation.
func Login(ctx context.Context, config *Config, w http.ResponseWriter, userID int64) error {
	sess := FromContext(ctx)
	if sess == nil {
		return ErrNotFound
	}

	newID, err := generateID()
	if err != nil {
		return err
	}

	oldID := sess.ID
	sess.ID = newID
	sess.UserID = userID

	if err := config.Store.Delete(ctx, oldID); err != nil {
		return err
	}
	if err := config.Store.Set(ctx, newID, sess, config.TTL()); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieName,
		Value:    newID,
		Path:     "/",
		MaxAge:   config.MaxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout destroys the session server-side and expires the cookie.
func Logout(ctx context.Context, config *Config, w http.ResponseWriter) error {
	sess := FromContext(ctx)
	if sess == nil {
		return nil
	}

	sess.destroyed = true
	sess.UserID = 0

	if err := config.Store.Delete(ctx, sess.ID); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:   config.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return nil
}

// UserID returns the authenticated user on the request session, or zero.
func UserID(ctx context.Context) int64 {
	if sess := FromContext(ctx); sess != nil {
		return sess.UserID
	}
	return 0
}

// RequireUser gates protected routes. Anonymous requests are redirected to
// /login with 303 See Other; the wrapped handler can rely on UserID being
// non-zero.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == 0 {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// generateID produces a cryptographically random opaque session token.
func generateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

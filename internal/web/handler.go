// Package web contains the HTTP surface: thin handlers translating requests
// into store calls and rendering templates. Handlers hold no per-request
// state; identity arrives through the session and "today" through the
// local-date resolver.
package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/racha-app/racha/internal/session"
	"github.com/racha-app/racha/internal/store"
)

// Handler carries the collaborators shared by all routes.
type Handler struct {
	store    *store.Store
	sessions *session.Config
	render   *Renderer
	logger   *zap.Logger
}

// NewHandler creates the route handler set.
func NewHandler(st *store.Store, sessions *session.Config, render *Renderer, logger *zap.Logger) *Handler {
	return &Handler{store: st, sessions: sessions, render: render, logger: logger}
}

// Page is the data every full page template needs. It is embedded in the
// per-page view structs and must stay exported so templates can reach its
// fields through the embedding.
type Page struct {
	Title    string
	LoggedIn bool
	Flashes  []session.Flash
}

// newPage drains the session's flash messages into the page.
func (h *Handler) newPage(r *http.Request, title string) Page {
	p := Page{Title: title, LoggedIn: session.UserID(r.Context()) != 0}
	if sess := session.FromContext(r.Context()); sess != nil {
		p.Flashes = sess.TakeFlashes()
	}
	return p
}

// progressView is the dashboard summary, re-rendered out-of-band by task
// mutations.
type progressView struct {
	CompletedCount    int
	TotalCount        int
	ActiveStreakCount int
	LongestStreak     int
	OOB               bool
}

func progressFrom(tasks []store.TaskWithStreak) progressView {
	view := progressView{TotalCount: len(tasks)}
	for _, t := range tasks {
		if t.Streak.CompletedToday {
			view.CompletedCount++
		}
		if t.Streak.Current > 0 {
			view.ActiveStreakCount++
		}
		if t.Streak.Current > view.LongestStreak {
			view.LongestStreak = t.Streak.Current
		}
	}
	return view
}

// serverError logs the cause and responds with a bare 500; internal detail
// never reaches the client.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

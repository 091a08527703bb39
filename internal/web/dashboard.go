package web

import (
	"net/http"

	"github.com/racha-app/racha/internal/localdate"
	"github.com/racha-app/racha/internal/session"
	"github.com/racha-app/racha/internal/store"
)

type dashboardPage struct {
	Page
	Username string
	Tasks    []store.TaskWithStreak
	Groups   []store.GroupWithMembership
	Progress progressView
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	user, err := h.store.UserByID(ctx, userID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	tasks, err := h.store.ActiveTasksWithStreaks(ctx, userID, localdate.Resolve(r))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	groups, err := h.store.UserGroups(ctx, userID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render.HTML(w, http.StatusOK, "dashboard.html", dashboardPage{
		Page:     h.newPage(r, "Dashboard"),
		Username: user.Username,
		Tasks:    tasks,
		Groups:   groups,
		Progress: progressFrom(tasks),
	})
}

package web

import (
	"net/http"

	"github.com/racha-app/racha/internal/session"
)

type profilePage struct {
	Page
	Username string
	Email    string
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.store.UserByID(ctx, session.UserID(ctx))
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render.HTML(w, http.StatusOK, "profile.html", profilePage{
		Page:     h.newPage(r, "Profile"),
		Username: user.Username,
		Email:    user.Email,
	})
}

package web

import (
	"net/http"
	"strings"

	"github.com/racha-app/racha/internal/auth"
	"github.com/racha-app/racha/internal/session"
	"github.com/racha-app/racha/internal/store"
	"go.uber.org/zap"
)

type authPage struct {
	Page
	Error string
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, http.StatusOK, "login.html", authPage{Page: h.newPage(r, "Log in")})
}

func (h *Handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	fail := func(message string) {
		h.render.HTML(w, http.StatusOK, "login.html", authPage{
			Page:  h.newPage(r, "Log in"),
			Error: message,
		})
	}

	user, err := h.store.UserByUsername(r.Context(), username)
	if store.IsNotFound(err) {
		// The message never says whether the username or the password
		// was wrong.
		fail("Invalid username or password")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !ok {
		fail("Invalid username or password")
		return
	}

	if err := session.Login(r.Context(), h.sessions, w, user.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, http.StatusOK, "register.html", authPage{Page: h.newPage(r, "Register")})
}

func (h *Handler) registerSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	fail := func(message string) {
		h.render.HTML(w, http.StatusOK, "register.html", authPage{
			Page:  h.newPage(r, "Register"),
			Error: message,
		})
	}

	if len(username) < 3 {
		fail("Username must be at least 3 characters")
		return
	}
	if len(password) < 8 {
		fail("Password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	userID, err := h.store.CreateUser(r.Context(), username, email, hash)
	if store.IsUniqueViolation(err) {
		fail("Username or email already taken")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if err := session.Login(r.Context(), h.sessions, w, userID); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := session.Logout(r.Context(), h.sessions, w); err != nil {
		h.logger.Warn("logout failed to destroy session", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

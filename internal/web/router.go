package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/racha-app/racha/internal/middleware"
	"github.com/racha-app/racha/internal/session"
)

// Router assembles the middleware stack and route table.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Handle("/static/*", staticHandler())

	r.Get("/login", h.loginPage)
	r.Post("/login", h.loginSubmit)
	r.Get("/register", h.registerPage)
	r.Post("/register", h.registerSubmit)
	r.Post("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(session.RequireUser)

		r.Get("/", h.dashboard)
		r.Get("/profile", h.profile)

		r.Get("/tasks/form", h.taskForm)
		r.Post("/tasks", h.createTask)
		r.Post("/tasks/{id}/toggle", h.toggleTask)
		r.Get("/tasks/{id}/edit", h.taskEditForm)
		r.Post("/tasks/{id}/edit", h.updateTask)
		r.Get("/tasks/{id}/card", h.taskCard)
		r.Post("/tasks/{id}/archive", h.archiveTask)

		r.Post("/groups", h.createGroup)
		r.Get("/groups/create-form", h.groupCreateForm)
		r.Get("/groups/join-form", h.groupJoinForm)
		r.Post("/groups/join", h.joinGroup)
		r.Get("/groups/{id}", h.groupFeed)
	})

	stack := middleware.NewChain(
		middleware.RequestID(),
		middleware.Recovery(h.logger),
		middleware.Logging(h.logger),
		session.Middleware(h.sessions, h.logger),
	)
	return stack.Then(r)
}

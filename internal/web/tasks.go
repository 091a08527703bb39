package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/racha-app/racha/internal/localdate"
	"github.com/racha-app/racha/internal/session"
	"github.com/racha-app/racha/internal/store"
)

func (h *Handler) taskForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.render.Fragment(w, "task_form.html", nil)
}

// createTask handles the inline new-task form. It responds with the new
// task's card plus an out-of-band progress refresh.
func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	name := strings.TrimSpace(r.PostFormValue("name"))
	description := strings.TrimSpace(r.PostFormValue("description"))
	if name == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		h.render.Fragment(w, "task_form.html", nil)
		return
	}

	id, err := h.store.CreateTask(ctx, userID, name, description)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.writeTaskCard(w, r, id, userID, localdate.Resolve(r))
}

// toggleTask flips today's completion for a task and responds with the
// refreshed card plus an out-of-band progress refresh.
func (h *Handler) toggleTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	today := localdate.Resolve(r)
	task, err := h.store.TaskWithStreakByID(ctx, id, today)
	if store.IsNotFound(err) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if task.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if task.Archived {
		http.NotFound(w, r)
		return
	}

	if task.Streak.CompletedToday {
		err = h.store.Uncomplete(ctx, id, today)
	} else {
		err = h.store.Complete(ctx, id, today)
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.writeTaskCard(w, r, id, userID, today)
}

func (h *Handler) taskEditForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	task, err := h.ownTask(ctx, id, session.UserID(ctx))
	if err != nil {
		h.taskError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.render.Fragment(w, "task_edit.html", task)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	description := strings.TrimSpace(r.PostFormValue("description"))
	if name == "" {
		task, err := h.ownTask(ctx, id, userID)
		if err != nil {
			h.taskError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		h.render.Fragment(w, "task_edit.html", task)
		return
	}

	if err := h.store.UpdateTask(ctx, id, userID, name, description); err != nil {
		h.taskError(w, r, err)
		return
	}

	h.writeTaskCard(w, r, id, userID, localdate.Resolve(r))
}

func (h *Handler) taskCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	today := localdate.Resolve(r)
	task, err := h.store.TaskWithStreakByID(ctx, id, today)
	if err != nil {
		h.taskError(w, r, err)
		return
	}
	if task.UserID != userID {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.render.Fragment(w, "task_card.html", task)
}

// archiveTask soft-deletes a task. The client removes the card itself, so
// the response carries only the out-of-band progress refresh.
func (h *Handler) archiveTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.store.ArchiveTask(ctx, id, userID); err != nil {
		h.taskError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.oobProgress(w, r, userID, localdate.Resolve(r)); err != nil {
		h.serverError(w, r, err)
	}
}

// ownTask fetches a task the user owns. A task belonging to someone else is
// indistinguishable from a missing one here.
func (h *Handler) ownTask(ctx context.Context, id, userID int64) (*store.Task, error) {
	task, err := h.store.TaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID || task.Archived {
		return nil, store.ErrNotFound
	}
	return task, nil
}

// taskError maps store errors onto the response: unknown and foreign tasks
// read as 404, everything else is a server fault.
func (h *Handler) taskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case store.IsNotFound(err), errors.Is(err, store.ErrNotOwner):
		http.NotFound(w, r)
	default:
		h.serverError(w, r, err)
	}
}

// writeTaskCard responds with a task's card followed by an out-of-band
// refresh of the progress summary.
func (h *Handler) writeTaskCard(w http.ResponseWriter, r *http.Request, id, userID int64, today time.Time) {
	task, err := h.store.TaskWithStreakByID(r.Context(), id, today)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.render.Fragment(w, "task_card.html", task)
	if err := h.oobProgress(w, r, userID, today); err != nil {
		h.serverError(w, r, err)
	}
}

// oobProgress appends the progress summary as an hx-swap-oob fragment.
func (h *Handler) oobProgress(w http.ResponseWriter, r *http.Request, userID int64, today time.Time) error {
	tasks, err := h.store.ActiveTasksWithStreaks(r.Context(), userID, today)
	if err != nil {
		return err
	}
	view := progressFrom(tasks)
	view.OOB = true
	h.render.Fragment(w, "progress.html", view)
	return nil
}

package web

import (
	"net/http"
	"strings"

	"github.com/racha-app/racha/internal/localdate"
	"github.com/racha-app/racha/internal/session"
	"github.com/racha-app/racha/internal/store"
)

type groupFeedPage struct {
	Page
	Group   *store.Group
	Members []memberFeed
}

// memberFeed is one member's section of a group feed.
type memberFeed struct {
	Username string
	Tasks    []store.MemberStreak
}

func (h *Handler) groupCreateForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.render.Fragment(w, "group_create_form.html", nil)
}

func (h *Handler) groupJoinForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.render.Fragment(w, "group_join_form.html", nil)
}

// createGroup creates a group, auto-joins the creator, and returns to the
// dashboard where the new group appears with its invite code.
func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		sess.AddFlash(session.FlashError, "Group name cannot be empty")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := h.store.CreateGroup(ctx, name, session.UserID(ctx)); err != nil {
		h.serverError(w, r, err)
		return
	}

	sess.AddFlash(session.FlashSuccess, "Group created")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// joinGroup joins by invite code. The code is normalized to uppercase before
// lookup, an unknown code flashes an error, and joining a group the user is
// already in changes nothing.
func (h *Handler) joinGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	code := strings.ToUpper(strings.TrimSpace(r.PostFormValue("invite_code")))
	group, err := h.store.GroupByInviteCode(ctx, code)
	if store.IsNotFound(err) {
		sess.AddFlash(session.FlashError, "Invalid invite code")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if err := h.store.JoinGroup(ctx, group.ID, session.UserID(ctx)); err != nil {
		h.serverError(w, r, err)
		return
	}

	sess.AddFlash(session.FlashSuccess, "Joined "+group.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// groupFeed shows every member's tasks and streaks, grouped by member.
func (h *Handler) groupFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	group, err := h.store.GroupByID(ctx, id)
	if store.IsNotFound(err) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	rows, err := h.store.MemberStreaks(ctx, id, localdate.Resolve(r))
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render.HTML(w, http.StatusOK, "group_feed.html", groupFeedPage{
		Page:    h.newPage(r, group.Name),
		Group:   group,
		Members: groupByMember(rows),
	})
}

// groupByMember folds the ordered feed rows into per-member sections. Rows
// arrive sorted by username, so adjacent rows with the same name belong to
// the same section.
func groupByMember(rows []store.MemberStreak) []memberFeed {
	var members []memberFeed
	for _, row := range rows {
		if len(members) == 0 || members[len(members)-1].Username != row.Username {
			members = append(members, memberFeed{Username: row.Username})
		}
		last := &members[len(members)-1]
		last.Tasks = append(last.Tasks, row)
	}
	return members
}

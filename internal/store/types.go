package store

import (
	"database/sql"
	"time"

	"github.com/racha-app/racha/internal/streak"
)

// User is a registered account. Immutable after registration.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Task is a daily habit owned by a user. Archived tasks are excluded from
// active views but never physically deleted.
type Task struct {
	ID          int64
	UserID      int64
	Name        string
	Description sql.NullString
	CreatedAt   time.Time
	Archived    bool
}

// TaskWithStreak is a task together with its derived streak view.
type TaskWithStreak struct {
	Task
	Streak streak.Result
}

// Group is a collection of users sharing progress, joined by invite code.
type Group struct {
	ID         int64
	Name       string
	InviteCode string
	CreatedBy  int64
	CreatedAt  time.Time
}

// GroupWithMembership is a dashboard row: a group the user belongs to, with
// its member count.
type GroupWithMembership struct {
	ID          int64
	Name        string
	InviteCode  string
	MemberCount int64
}

// MemberStreak is one row of a group feed: a member's task with its streak.
type MemberStreak struct {
	UserID   int64
	Username string
	TaskID   int64
	TaskName string
	Streak   streak.Result
}

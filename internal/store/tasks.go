package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/racha-app/racha/internal/streak"
)

// CreateTask inserts a task for the user and returns its ID. An empty
// description is stored as NULL.
func (s *Store) CreateTask(ctx context.Context, userID int64, name, description string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`, userID, name, nullIfEmpty(description)).Scan(&id)
	if err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

// UpdateTask changes a task's name and description. The mutation is scoped
// to the owner; acting on another user's task returns ErrNotOwner, a missing
// task ErrNotFound.
func (s *Store) UpdateTask(ctx context.Context, id, userID int64, name, description string) error {
	if err := s.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET name = $1, description = $2 WHERE id = $3 AND user_id = $4
	`, name, nullIfEmpty(description), id, userID)
	return translateError(err)
}

// ArchiveTask soft-deletes a task: it disappears from active views but its
// rows, completions included, stay in storage. Scoped to the owner.
func (s *Store) ArchiveTask(ctx context.Context, id, userID int64) error {
	if err := s.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET archived = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	return translateError(err)
}

// TaskByID fetches a task regardless of owner or archived state.
func (s *Store) TaskByID(ctx context.Context, id int64) (*Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, created_at, archived
		FROM tasks WHERE id = $1
	`, id).Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.CreatedAt, &t.Archived)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// TaskWithStreakByID fetches a task with its streak evaluated against the
// given day. The streak is recomputed on every call.
func (s *Store) TaskWithStreakByID(ctx context.Context, id int64, today time.Time) (*TaskWithStreak, error) {
	task, err := s.TaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dates, err := s.CompletionDates(ctx, id)
	if err != nil {
		return nil, err
	}

	return &TaskWithStreak{Task: *task, Streak: streak.Compute(dates, today)}, nil
}

// ActiveTasksWithStreaks returns the user's unarchived tasks, newest first,
// each with its streak evaluated against the given day.
func (s *Store) ActiveTasksWithStreaks(ctx context.Context, userID int64, today time.Time) ([]TaskWithStreak, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, created_at, archived
		FROM tasks
		WHERE user_id = $1 AND archived = FALSE
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var tasks []TaskWithStreak
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.CreatedAt, &t.Archived); err != nil {
			return nil, err
		}
		tasks = append(tasks, TaskWithStreak{Task: t})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	completions, err := s.completionsByTask(ctx, `
		SELECT c.task_id, CAST(c.completed_date AS TEXT)
		FROM completions c
		JOIN tasks t ON t.id = c.task_id
		WHERE t.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i].Streak = streak.Compute(completions[tasks[i].ID], today)
	}
	return tasks, nil
}

// checkOwner verifies the acting user owns the task before a mutation.
func (s *Store) checkOwner(ctx context.Context, id, userID int64) error {
	task, err := s.TaskByID(ctx, id)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

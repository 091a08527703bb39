package store

import (
	"context"
	"fmt"
	"time"

	"github.com/racha-app/racha/internal/localdate"
)

// Complete records a completion for the task on the given date. Completing
// an already-completed day is a no-op, not an error: the uniqueness
// constraint on (task_id, completed_date) absorbs the race where two
// concurrent toggles both read "not completed".
func (s *Store) Complete(ctx context.Context, taskID int64, date time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (task_id, completed_date)
		VALUES ($1, $2)
		ON CONFLICT (task_id, completed_date) DO NOTHING
	`, taskID, localdate.Format(date))
	return translateError(err)
}

// Uncomplete removes the completion for the task on the given date, if any.
func (s *Store) Uncomplete(ctx context.Context, taskID int64, date time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM completions WHERE task_id = $1 AND completed_date = $2
	`, taskID, localdate.Format(date))
	return translateError(err)
}

// CompletionDates returns every completion date recorded for the task.
func (s *Store) CompletionDates(ctx context.Context, taskID int64) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(completed_date AS TEXT) FROM completions WHERE task_id = $1
	`, taskID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := time.Parse(localdate.Layout, raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt completion date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// completionsByTask loads completion dates for many tasks at once, keyed by
// task ID. The extra join condition scopes the read to one user or group so
// the row set stays small.
func (s *Store) completionsByTask(ctx context.Context, query string, arg interface{}) (map[int64][]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	byTask := make(map[int64][]time.Time)
	for rows.Next() {
		var taskID int64
		var raw string
		if err := rows.Scan(&taskID, &raw); err != nil {
			return nil, err
		}
		d, err := time.Parse(localdate.Layout, raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt completion date %q: %w", raw, err)
		}
		byTask[taskID] = append(byTask[taskID], d)
	}
	return byTask, rows.Err()
}

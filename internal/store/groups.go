package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/racha-app/racha/internal/streak"
)

// inviteAlphabet excludes characters easily misread when codes are shared
// aloud or copied by hand (I, O, 0, 1).
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLen = 8

// CreateGroup inserts a group with a fresh invite code and auto-joins the
// creator, both in one transaction.
func (s *Store) CreateGroup(ctx context.Context, name string, createdBy int64) (int64, error) {
	code, err := generateInviteCode()
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, translateError(err)
	}
	defer tx.Rollback()

	var groupID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO groups (name, invite_code, created_by)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, code, createdBy).Scan(&groupID)
	if err != nil {
		return 0, translateError(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
	`, groupID, createdBy)
	if err != nil {
		return 0, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, translateError(err)
	}
	return groupID, nil
}

// GroupByID fetches a group by primary key.
func (s *Store) GroupByID(ctx context.Context, id int64) (*Group, error) {
	return s.groupBy(ctx, `
		SELECT id, name, invite_code, created_by, created_at FROM groups WHERE id = $1
	`, id)
}

// GroupByInviteCode fetches a group by invite code. Callers normalize the
// code to upper case first; the stored codes are always upper case.
func (s *Store) GroupByInviteCode(ctx context.Context, code string) (*Group, error) {
	return s.groupBy(ctx, `
		SELECT id, name, invite_code, created_by, created_at FROM groups WHERE invite_code = $1
	`, code)
}

func (s *Store) groupBy(ctx context.Context, query string, arg interface{}) (*Group, error) {
	var g Group
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &g, nil
}

// JoinGroup adds the user to the group. Joining twice is idempotent: the
// second insert hits the (group_id, user_id) uniqueness constraint and is
// ignored.
func (s *Store) JoinGroup(ctx context.Context, groupID, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID)
	return translateError(err)
}

// UserGroups returns the groups the user belongs to, with member counts,
// ordered by name.
func (s *Store) UserGroups(ctx context.Context, userID int64) ([]GroupWithMembership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.invite_code,
		       (SELECT COUNT(*) FROM group_members gm2 WHERE gm2.group_id = g.id) AS member_count
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.name
	`, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var groups []GroupWithMembership
	for rows.Next() {
		var g GroupWithMembership
		if err := rows.Scan(&g.ID, &g.Name, &g.InviteCode, &g.MemberCount); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// MemberStreaks returns every member's active tasks with streaks evaluated
// against the given day, ordered by username then task name.
func (s *Store) MemberStreaks(ctx context.Context, groupID int64, today time.Time) ([]MemberStreak, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, t.id, t.name
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		JOIN tasks t ON t.user_id = u.id AND t.archived = FALSE
		WHERE gm.group_id = $1
		ORDER BY u.username, t.name
	`, groupID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var members []MemberStreak
	for rows.Next() {
		var m MemberStreak
		if err := rows.Scan(&m.UserID, &m.Username, &m.TaskID, &m.TaskName); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	completions, err := s.completionsByTask(ctx, `
		SELECT c.task_id, CAST(c.completed_date AS TEXT)
		FROM completions c
		JOIN tasks t ON t.id = c.task_id
		JOIN group_members gm ON gm.user_id = t.user_id
		WHERE gm.group_id = $1
	`, groupID)
	if err != nil {
		return nil, err
	}

	for i := range members {
		members[i].Streak = streak.Compute(completions[members[i].TaskID], today)
	}
	return members, nil
}

func generateInviteCode() (string, error) {
	code := make([]byte, inviteCodeLen)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code), nil
}

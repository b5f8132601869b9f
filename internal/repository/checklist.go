package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

func (s *SQLiteDB) ListChecklistItems(ctx context.Context, userID, disasterType string) ([]models.ChecklistItem, error) {
	const op = "repository.SQLiteDB.ListChecklistItems"

	query := `SELECT id, user_id, task, disaster_type, is_completed FROM checklist_items WHERE user_id = ?`
	args := []any{userID}
	if disasterType != "" {
		query += ` AND disaster_type = ?`
		args = append(args, disasterType)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	items := make([]models.ChecklistItem, 0)
	for rows.Next() {
		var it models.ChecklistItem
		if err := rows.Scan(&it.ID, &it.Owner, &it.Task, &it.DisasterType, &it.IsCompleted); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return items, nil
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateChecklistItem inserts a new incomplete item. The unique key on
// (user_id, disaster_type, task) makes concurrent creators converge on one row,
// which is returned to every caller.
func (s *SQLiteDB) CreateChecklistItem(ctx context.Context, userID, task, disasterType string) (*models.ChecklistItem, error) {
	const op = "repository.SQLiteDB.CreateChecklistItem"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, e.ErrUnauthenticated)
	}
	if task == "" || disasterType == "" {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	it, err := s.upsertChecklistItem(ctx, s.db, userID, task, disasterType)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return it, nil
}

// CreateChecklistItems upserts tasks in one transaction, so either every task
// is stored or none is. Items come back in task order.
func (s *SQLiteDB) CreateChecklistItems(ctx context.Context, userID, disasterType string, tasks []string) ([]models.ChecklistItem, error) {
	const op = "repository.SQLiteDB.CreateChecklistItems"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, e.ErrUnauthenticated)
	}
	if disasterType == "" || slices.Contains(tasks, "") {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	defer tx.Rollback()

	items := make([]models.ChecklistItem, 0, len(tasks))
	for _, task := range tasks {
		it, err := s.upsertChecklistItem(ctx, tx, userID, task, disasterType)
		if err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		items = append(items, *it)
	}

	if err := tx.Commit(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return items, nil
}

func (s *SQLiteDB) upsertChecklistItem(ctx context.Context, q execQuerier, userID, task, disasterType string) (*models.ChecklistItem, error) {
	_, err := q.ExecContext(ctx, `
		INSERT INTO checklist_items (id, user_id, task, disaster_type, is_completed, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT(user_id, disaster_type, task) DO NOTHING`,
		uuid.NewString(), userID, task, disasterType, toMillis(s.now()),
	)
	if err != nil {
		return nil, err
	}

	var it models.ChecklistItem
	err = q.QueryRowContext(ctx, `
		SELECT id, user_id, task, disaster_type, is_completed
		FROM checklist_items
		WHERE user_id = ? AND disaster_type = ? AND task = ?`,
		userID, disasterType, task,
	).Scan(&it.ID, &it.Owner, &it.Task, &it.DisasterType, &it.IsCompleted)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *SQLiteDB) SetChecklistItemCompletion(ctx context.Context, id string, completed bool) error {
	const op = "repository.SQLiteDB.SetChecklistItemCompletion"

	res, err := s.db.ExecContext(ctx, `UPDATE checklist_items SET is_completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: item %s: %w", op, id, e.ErrNotFound)
	}
	return nil
}

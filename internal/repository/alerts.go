package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

const alertColumns = `id, source, type, severity, location, description, instructions, timestamp, created_at`

func (s *SQLiteDB) Add(ctx context.Context, a *models.DisasterAlert) error {
	const op = "repository.SQLiteDB.Add"

	if a == nil || a.ID == "" {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	instructions := a.Instructions
	if instructions == nil {
		instructions = []string{}
	}
	raw, err := json.Marshal(instructions)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Source, a.Type, string(a.Severity), a.Location, a.Description,
		string(raw), toMillis(a.Timestamp), toMillis(a.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%s: alert %s: %w", op, a.ID, e.ErrConflict)
		}
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.DisasterAlert, error) {
	const op = "repository.SQLiteDB.GetByID"

	row := s.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, e.WrapError(ctx, op, err)
	}
	return a, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, id string) (bool, error) {
	const op = "repository.SQLiteDB.Exists"

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM alerts WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, e.WrapError(ctx, op, err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) ListAlerts(ctx context.Context, opts Filter) ([]models.DisasterAlert, error) {
	const op = "repository.SQLiteDB.ListAlerts"

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	var args []any

	if opts.Type != "" {
		query += ` AND type = ? COLLATE NOCASE`
		args = append(args, opts.Type)
	}
	if opts.Severity != nil {
		query += ` AND severity = ?`
		args = append(args, string(*opts.Severity))
	}
	if opts.Since != nil {
		query += ` AND timestamp >= ?`
		args = append(args, toMillis(*opts.Since))
	}
	query += ` ORDER BY timestamp DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	alerts := make([]models.DisasterAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return alerts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(sc scanner) (*models.DisasterAlert, error) {
	var (
		a            models.DisasterAlert
		severity     string
		description  sql.NullString
		instructions string
		ts, created  int64
	)
	if err := sc.Scan(&a.ID, &a.Source, &a.Type, &severity, &a.Location, &description, &instructions, &ts, &created); err != nil {
		return nil, err
	}
	a.Severity = models.Severity(severity)
	a.Description = description.String
	a.Timestamp = fromMillis(ts)
	a.CreatedAt = fromMillis(created)
	if err := json.Unmarshal([]byte(instructions), &a.Instructions); err != nil {
		return nil, fmt.Errorf("decoding instructions of %s: %w", a.ID, err)
	}
	return &a, nil
}

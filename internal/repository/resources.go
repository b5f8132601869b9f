package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

func (s *SQLiteDB) AddResource(ctx context.Context, r *models.Resource) error {
	const op = "repository.SQLiteDB.AddResource"

	if r == nil || !r.Type.Valid() {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if err := r.Location.Coordinate.Validate(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, e.ErrInvalidInput, err)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (id, type, name, description, latitude, longitude, address, availability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			description = excluded.description,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			address = excluded.address,
			availability = excluded.availability`,
		r.ID, string(r.Type), r.Name, r.Description,
		r.Location.Latitude, r.Location.Longitude, r.Location.Address, string(r.Availability),
	)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (s *SQLiteDB) ListResources(ctx context.Context, opts ResourceFilter) ([]models.Resource, error) {
	const op = "repository.SQLiteDB.ListResources"

	query := `SELECT id, type, name, description, latitude, longitude, address, availability FROM resources`
	var args []any
	if opts.Type != "" {
		query += ` WHERE type = ?`
		args = append(args, string(opts.Type))
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	resources := make([]models.Resource, 0)
	for rows.Next() {
		var (
			r                    models.Resource
			typ, availability    string
			description, address sql.NullString
		)
		if err := rows.Scan(&r.ID, &typ, &r.Name, &description, &r.Location.Latitude, &r.Location.Longitude, &address, &availability); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		r.Type = models.ResourceType(typ)
		r.Availability = models.Availability(availability)
		r.Description = description.String
		r.Location.Address = address.String
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return resources, nil
}

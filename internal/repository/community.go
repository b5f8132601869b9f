package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

func (s *SQLiteDB) ListContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	const op = "repository.SQLiteDB.ListContacts"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, phone, relationship, created_at
		FROM emergency_contacts
		WHERE user_id = ?
		ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	contacts := make([]models.EmergencyContact, 0)
	for rows.Next() {
		var (
			c            models.EmergencyContact
			relationship sql.NullString
			created      int64
		)
		if err := rows.Scan(&c.ID, &c.Owner, &c.Name, &c.Phone, &relationship, &created); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		c.Relationship = relationship.String
		c.CreatedAt = fromMillis(created)
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return contacts, nil
}

func (s *SQLiteDB) AddContact(ctx context.Context, c *models.EmergencyContact) error {
	const op = "repository.SQLiteDB.AddContact"

	if c == nil || c.Owner == "" {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emergency_contacts (id, user_id, name, phone, relationship, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Owner, c.Name, c.Phone, c.Relationship, toMillis(c.CreatedAt),
	)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

// RemoveContact deletes a contact owned by userID. Contacts of other users are
// reported as not found.
func (s *SQLiteDB) RemoveContact(ctx context.Context, userID, id string) error {
	const op = "repository.SQLiteDB.RemoveContact"

	res, err := s.db.ExecContext(ctx, `DELETE FROM emergency_contacts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: contact %s: %w", op, id, e.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDB) ListMessages(ctx context.Context, limit int) ([]models.CommunityMessage, error) {
	const op = "repository.SQLiteDB.ListMessages"

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, user_name, message, location, timestamp
		FROM community_messages
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	messages := make([]models.CommunityMessage, 0)
	for rows.Next() {
		var (
			m        models.CommunityMessage
			location sql.NullString
			ts       int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.UserName, &m.Message, &location, &ts); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		m.Location = location.String
		m.Timestamp = fromMillis(ts)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return messages, nil
}

func (s *SQLiteDB) AddMessage(ctx context.Context, m *models.CommunityMessage) error {
	const op = "repository.SQLiteDB.AddMessage"

	if m == nil || m.UserID == "" {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	m.ID = uuid.NewString()
	m.Timestamp = s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO community_messages (id, user_id, user_name, message, location, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.UserName, m.Message, m.Location, toMillis(m.Timestamp),
	)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

type ContactStore interface {
	ListContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error)
	AddContact(ctx context.Context, c *models.EmergencyContact) error
	RemoveContact(ctx context.Context, userID, id string) error
}

type MessageStore interface {
	ListMessages(ctx context.Context, limit int) ([]models.CommunityMessage, error)
	AddMessage(ctx context.Context, m *models.CommunityMessage) error
}

type CommunityService struct {
	contacts ContactStore
	messages MessageStore
}

func NewCommunityService(contacts ContactStore, messages MessageStore) *CommunityService {
	return &CommunityService{contacts: contacts, messages: messages}
}

// Contacts lists the user's emergency contacts. Anonymous users have none.
func (s *CommunityService) Contacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	if userID == "" {
		return []models.EmergencyContact{}, nil
	}
	return s.contacts.ListContacts(ctx, userID)
}

func (s *CommunityService) AddContact(ctx context.Context, userID string, c models.EmergencyContact) (models.EmergencyContact, error) {
	const op = "service.CommunityService.AddContact"

	if userID == "" {
		return models.EmergencyContact{}, fmt.Errorf("%s: %w", op, e.ErrUnauthenticated)
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if err := c.Validate(); err != nil {
		return models.EmergencyContact{}, fmt.Errorf("%s: %w: %v", op, e.ErrInvalidInput, err)
	}
	c.Owner = userID
	if err := s.contacts.AddContact(ctx, &c); err != nil {
		return models.EmergencyContact{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *CommunityService) RemoveContact(ctx context.Context, userID, id string) error {
	const op = "service.CommunityService.RemoveContact"

	if userID == "" {
		return fmt.Errorf("%s: %w", op, e.ErrUnauthenticated)
	}
	if err := s.contacts.RemoveContact(ctx, userID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *CommunityService) Messages(ctx context.Context, limit int) ([]models.CommunityMessage, error) {
	return s.messages.ListMessages(ctx, limit)
}

func (s *CommunityService) PostMessage(ctx context.Context, userID string, m models.CommunityMessage) (models.CommunityMessage, error) {
	const op = "service.CommunityService.PostMessage"

	if userID == "" {
		return models.CommunityMessage{}, fmt.Errorf("%s: %w", op, e.ErrUnauthenticated)
	}
	m.Message = strings.TrimSpace(m.Message)
	if err := m.Validate(); err != nil {
		return models.CommunityMessage{}, fmt.Errorf("%s: %w: %v", op, e.ErrInvalidInput, err)
	}
	m.UserID = userID
	if err := s.messages.AddMessage(ctx, &m); err != nil {
		return models.CommunityMessage{}, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

package repository

import (
	"context"
	"time"

	"github.com/mr1hm/go-disaster-prep/internal/models"
)

type Filter struct {
	Limit    int
	Type     string
	Severity *models.Severity
	Since    *time.Time
}

type ResourceFilter struct {
	Type models.ResourceType
}

type AlertRepository interface {
	Add(ctx context.Context, a *models.DisasterAlert) error
	GetByID(ctx context.Context, id string) (*models.DisasterAlert, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListAlerts(ctx context.Context, opts Filter) ([]models.DisasterAlert, error)
}

type ResourceRepository interface {
	AddResource(ctx context.Context, r *models.Resource) error
	ListResources(ctx context.Context, opts ResourceFilter) ([]models.Resource, error)
}

type ChecklistRepository interface {
	// ListChecklistItems returns the user's items in creation order.
	// An empty disasterType returns items of every type.
	ListChecklistItems(ctx context.Context, userID, disasterType string) ([]models.ChecklistItem, error)
	// CreateChecklistItem returns the existing item when (userID, disasterType, task) is already stored.
	CreateChecklistItem(ctx context.Context, userID, task, disasterType string) (*models.ChecklistItem, error)
	// CreateChecklistItems stores all tasks or none, with the same per-task idempotency.
	CreateChecklistItems(ctx context.Context, userID, disasterType string, tasks []string) ([]models.ChecklistItem, error)
	SetChecklistItemCompletion(ctx context.Context, id string, completed bool) error
}

type ContactRepository interface {
	ListContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error)
	AddContact(ctx context.Context, c *models.EmergencyContact) error
	RemoveContact(ctx context.Context, userID, id string) error
}

type MessageRepository interface {
	// ListMessages returns the newest messages first.
	ListMessages(ctx context.Context, limit int) ([]models.CommunityMessage, error)
	AddMessage(ctx context.Context, m *models.CommunityMessage) error
}

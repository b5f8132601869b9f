package models

// ChecklistItem belongs to one user. Only IsCompleted changes after creation.
type ChecklistItem struct {
	ID           string `json:"id"`
	Task         string `json:"task"`
	IsCompleted  bool   `json:"is_completed"`
	DisasterType string `json:"disaster_type"`
	Owner        string `json:"owner,omitempty"`
}

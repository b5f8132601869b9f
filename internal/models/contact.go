package models

import "time"

type EmergencyContact struct {
	ID           string    `json:"id"`
	Owner        string    `json:"-"`
	Name         string    `json:"name" validate:"required,max=100"`
	Phone        string    `json:"phone" validate:"required,max=20"`
	Relationship string    `json:"relationship" validate:"max=50"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c EmergencyContact) Validate() error {
	return validate.Struct(c)
}

type CommunityMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name" validate:"required,max=100"`
	Message   string    `json:"message" validate:"required,max=1000"`
	Location  string    `json:"location" validate:"max=200"`
	Timestamp time.Time `json:"timestamp"`
}

func (m CommunityMessage) Validate() error {
	return validate.Struct(m)
}

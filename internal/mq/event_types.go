package mq

import (
	"time"

	"projecttracker/internal/model"
)

const (
	RoutingUserRegistered = "user.registered"
	RoutingUserLoggedIn   = "user.logged_in"
)

// RecordCreatedKey is the routing key for a new record of category c.
func RecordCreatedKey(c model.Category) string {
	return "record.created." + string(c)
}

// RecordCreatedPayload is emitted after a record is committed.
type RecordCreatedPayload struct {
	Category    model.Category `json:"category"`
	ID          int64          `json:"id"`
	ProjectName string         `json:"project_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// UserPayload is emitted on registration and login.
type UserPayload struct {
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

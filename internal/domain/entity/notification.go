package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypePayment NotificationType = "payment"
	NotificationTypeUser    NotificationType = "user"
	NotificationTypeSystem  NotificationType = "system"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypePayment, NotificationTypeUser, NotificationTypeSystem:
		return true
	}
	return false
}

// NotificationEvent is pushed to subscribers after a notification row is committed.
type NotificationEvent struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
)

// Notification is an in-app message for exactly one user
type Notification struct {
	ID        uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID               `gorm:"type:uuid;not null;index:idx_notifications_user_read" json:"user_id"`
	Title     string                  `gorm:"size:200;not null" json:"title"`
	Message   string                  `gorm:"type:text;not null" json:"message"`
	Type      entity.NotificationType `gorm:"size:16;not null" json:"type"`
	IsRead    bool                    `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt time.Time               `gorm:"default:now();index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Event builds the realtime payload for this notification.
func (n *Notification) Event() entity.NotificationEvent {
	return entity.NotificationEvent{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		CreatedAt: n.CreatedAt,
	}
}

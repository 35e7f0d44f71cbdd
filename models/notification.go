package models

import "time"

// Notification is a team-scoped event record. Delivery to users happens via
// NotificationRecipient rows; anything beyond the inbox listing (email, push)
// is outside this service.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"notification_id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	Type      string    `gorm:"not null" json:"notification_type"`
	Message   string    `gorm:"not null" json:"message"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"notified_at"`

	// Relations
	Team Team `json:"-"`
}

// NotificationRecipient fans a notification out to a single user.
type NotificationRecipient struct {
	ID             uint `gorm:"primaryKey" json:"-"`
	NotificationID uint `gorm:"not null;uniqueIndex:idx_notification_user" json:"notification_id"`
	UserID         uint `gorm:"not null;uniqueIndex:idx_notification_user;index" json:"user_id"`
	ReadStatus     bool `gorm:"default:false" json:"read_status"`

	// Relations
	Notification Notification `json:"-"`
	User         User         `json:"-"`
}

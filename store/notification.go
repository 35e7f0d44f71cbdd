package store

import (
	"errors"

	"gorm.io/gorm"

	"collabhub/models"
)

// NotificationStore records team events and fans them out to recipient
// inboxes. Delivery beyond the inbox listing (email, push, websockets) is
// not this service's job.
type NotificationStore struct {
	DB *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{DB: db}
}

// NotificationItem is one inbox entry: the notification joined with its team
// name and the per-recipient read flag.
type NotificationItem struct {
	models.Notification
	TeamName   string `json:"team_name"`
	ReadStatus bool   `json:"read_status"`
}

// Create inserts the notification and one recipient row per user in a single
// transaction. With no recipients there is nothing to record.
func (ns *NotificationStore) Create(teamID uint, kind, message, link string, recipientIDs []uint) (uint, error) {
	if len(recipientIDs) == 0 {
		return 0, ErrValidation
	}

	notification := models.Notification{TeamID: teamID, Type: kind, Message: message, Link: link}
	err := ns.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
		recipients := make([]models.NotificationRecipient, 0, len(recipientIDs))
		for _, userID := range recipientIDs {
			recipients = append(recipients, models.NotificationRecipient{
				NotificationID: notification.ID,
				UserID:         userID,
			})
		}
		return tx.Create(&recipients).Error
	})
	if err != nil {
		return 0, err
	}
	return notification.ID, nil
}

// ListForUser returns the user's inbox, newest first.
func (ns *NotificationStore) ListForUser(userID uint) ([]NotificationItem, error) {
	var rows []struct {
		models.Notification
		TeamName   string
		ReadStatus bool
	}
	err := ns.DB.Model(&models.NotificationRecipient{}).
		Select("notifications.*", "teams.name AS team_name", "notification_recipients.read_status").
		Joins("JOIN notifications ON notifications.id = notification_recipients.notification_id").
		Joins("LEFT JOIN teams ON teams.id = notifications.team_id").
		Where("notification_recipients.user_id = ?", userID).
		Order("notifications.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]NotificationItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, NotificationItem{
			Notification: r.Notification,
			TeamName:     r.TeamName,
			ReadStatus:   r.ReadStatus,
		})
	}
	return items, nil
}

// MarkRead flags the user's copy of a notification as read.
func (ns *NotificationStore) MarkRead(userID, notificationID uint) error {
	var recipient models.NotificationRecipient
	err := ns.DB.
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		First(&recipient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ns.DB.Model(&recipient).Update("read_status", true).Error
}

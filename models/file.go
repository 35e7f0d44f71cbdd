package models

import "time"

// File is the metadata row for an attachment stored in the object store.
// The bytes themselves live in the bucket under ObjectKey.
type File struct {
	ID           uint      `gorm:"primaryKey" json:"file_id"`
	TeamID       uint      `gorm:"not null;index" json:"team_id"`
	UserID       uint      `gorm:"not null" json:"user_id"`
	OriginalName string    `gorm:"not null" json:"original_filename"`
	Extension    string    `gorm:"not null" json:"file_extension"`
	Size         int64     `json:"file_size"`
	ContentType  string    `json:"content_type"`
	Bucket       string    `gorm:"not null" json:"-"`
	ObjectKey    string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"upload_timestamp"`

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}

package models

import "time"

// Membership roles. Every authorization decision reduces to these two values.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Team represents a collaboration space for tasks, discussions and files
type Team struct {
	ID          uint      `gorm:"primaryKey" json:"team_id"`
	Name        string    `gorm:"not null" json:"team_name"`
	Description string    `json:"team_description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TeamMember represents team members and their roles. One row per
// (user, team) pair.
type TeamMember struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	TeamID uint   `gorm:"not null;uniqueIndex:idx_team_user" json:"team_id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_team_user;index" json:"user_id"`
	Role   string `gorm:"default:'member'" json:"role"` // member, admin

	CreatedAt time.Time `json:"joined_at"`

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}

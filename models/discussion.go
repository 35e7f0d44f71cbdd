package models

import "time"

// Discussion is a team-scoped post. Replies are regular discussion rows tied
// to their parent through SubDiscussionLink, mirroring the task/subtask shape
// but limited to one nesting level.
type Discussion struct {
	ID        uint      `gorm:"primaryKey" json:"post_id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"posted_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}

// SubDiscussionLink is a directed edge from a reply post to its parent post.
type SubDiscussionLink struct {
	ID           uint `gorm:"primaryKey" json:"-"`
	PostID       uint `gorm:"not null;uniqueIndex" json:"post_id"`
	ParentPostID uint `gorm:"not null;index" json:"parent_post_id"`

	// Relations
	Post   Discussion `gorm:"foreignKey:PostID" json:"-"`
	Parent Discussion `gorm:"foreignKey:ParentPostID" json:"-"`
}

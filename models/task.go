package models

import "time"

// Task statuses
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// Task represents a unit of work within a team. Whether a task is someone's
// subtask is not a field on the task itself: the relationship lives in
// SubtaskLink, so a task can exist without being anyone's child.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"task_id"`
	Name        string     `gorm:"not null" json:"task_name"`
	Description string     `json:"task_description"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `gorm:"default:'open'" json:"status"` // open, in-progress, completed
	TeamID      uint       `gorm:"not null;index" json:"team_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Team Team `json:"-"`
}

// TaskAssignment links a task to its single assignee. The unique index on
// TaskID is what makes the at-most-one-assignee invariant hold under
// concurrent assignment attempts.
type TaskAssignment struct {
	ID     uint `gorm:"primaryKey" json:"-"`
	TaskID uint `gorm:"not null;uniqueIndex" json:"task_id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	CreatedAt time.Time `json:"assigned_at"`

	// Relations
	Task Task `json:"-"`
	User User `json:"-"`
}

// SubtaskLink is a directed edge from a child task to its parent. A task has
// at most one parent; cascading delete walks these edges transitively.
type SubtaskLink struct {
	ID           uint `gorm:"primaryKey" json:"-"`
	TaskID       uint `gorm:"not null;uniqueIndex" json:"task_id"`
	ParentTaskID uint `gorm:"not null;index" json:"parent_task_id"`

	// Relations
	Task   Task `gorm:"foreignKey:TaskID" json:"-"`
	Parent Task `gorm:"foreignKey:ParentTaskID" json:"-"`
}

// TaskComment is a comment attached to a task
type TaskComment struct {
	ID        uint      `gorm:"primaryKey" json:"comment_id"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"commented_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Task Task `json:"-"`
	User User `json:"-"`
}

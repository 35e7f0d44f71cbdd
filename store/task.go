package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"collabhub/models"
)

// TaskStore owns the task lifecycle: creation, partial updates, the
// single-assignee relationship and the cascading delete of subtask trees.
type TaskStore struct {
	DB      *gorm.DB
	Members *MembershipStore
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{DB: db, Members: NewMembershipStore(db)}
}

type CreateTaskInput struct {
	Name         string
	Description  string
	DueDate      *time.Time
	TeamID       uint
	ParentTaskID *uint
}

type UpdateTaskInput struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	Status      *string
}

// TaskWithAssignee is a task merged with its (at most one) assignee's public
// profile fields.
type TaskWithAssignee struct {
	models.Task
	Assignee *models.PublicProfile `json:"assignee,omitempty"`
}

// CommentWithAuthor is a comment merged with its author's public profile.
type CommentWithAuthor struct {
	models.TaskComment
	Author models.PublicProfile `json:"author"`
}

// SubtaskDetail is a direct subtask enriched with assignee and comments.
type SubtaskDetail struct {
	TaskWithAssignee
	Comments []CommentWithAuthor `json:"comments"`
}

// TaskDetail is the full view returned for a single task.
type TaskDetail struct {
	TaskWithAssignee
	Comments []CommentWithAuthor `json:"comments"`
	Subtasks []SubtaskDetail     `json:"subtasks"`
}

func validTaskStatus(s string) bool {
	switch s {
	case models.TaskStatusOpen, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	}
	return false
}

// teamOf resolves a task's team, or ErrNotFound. Existence is always checked
// before membership so that 404 wins over 403 for missing tasks.
func (ts *TaskStore) teamOf(taskID uint) (uint, error) {
	var task models.Task
	err := ts.DB.Select("id", "team_id").First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return task.TeamID, nil
}

// Create inserts a task and, when ParentTaskID is set, the subtask link. The
// parent must exist and belong to the same team as the new task.
func (ts *TaskStore) Create(actorID uint, in CreateTaskInput) (*models.Task, error) {
	if in.Name == "" || in.TeamID == 0 {
		return nil, ErrValidation
	}
	if err := ts.Members.RequireMember(actorID, in.TeamID); err != nil {
		return nil, err
	}

	if in.ParentTaskID != nil {
		var parent models.Task
		err := ts.DB.Select("id", "team_id").First(&parent, *in.ParentTaskID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if parent.TeamID != in.TeamID {
			return nil, ErrValidation
		}
	}

	task := models.Task{
		Name:        in.Name,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      models.TaskStatusOpen,
		TeamID:      in.TeamID,
	}

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if in.ParentTaskID != nil {
			link := models.SubtaskLink{TaskID: task.ID, ParentTaskID: *in.ParentTaskID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial update. Calling with zero fields is an input error.
func (ts *TaskStore) Update(actorID, taskID uint, in UpdateTaskInput) error {
	updates := map[string]interface{}{}
	if in.Name != nil {
		if *in.Name == "" {
			return ErrValidation
		}
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.DueDate != nil {
		updates["due_date"] = *in.DueDate
	}
	if in.Status != nil {
		if !validTaskStatus(*in.Status) {
			return ErrValidation
		}
		updates["status"] = *in.Status
	}
	if len(updates) == 0 {
		return ErrValidation
	}

	teamID, err := ts.teamOf(taskID)
	if err != nil {
		return err
	}
	if err := ts.Members.RequireMember(actorID, teamID); err != nil {
		return err
	}

	return ts.DB.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error
}

// Delete removes the task together with every descendant reachable through
// SubtaskLink, plus all assignment, link and comment rows for the whole set.
// The descendant set is collected up front from a single link fetch; nothing
// is deleted until the set is complete, and the deletes run in one
// transaction so an interrupted cascade leaves the tree unchanged.
func (ts *TaskStore) Delete(actorID, taskID uint) error {
	teamID, err := ts.teamOf(taskID)
	if err != nil {
		return err
	}
	if err := ts.Members.RequireMember(actorID, teamID); err != nil {
		return err
	}

	// All descendants live in the same team, so one query bounded by the
	// team yields every edge the walk can reach.
	var links []models.SubtaskLink
	err = ts.DB.
		Joins("JOIN tasks ON tasks.id = subtask_links.task_id").
		Where("tasks.team_id = ?", teamID).
		Find(&links).Error
	if err != nil {
		return err
	}

	children := make(map[uint][]uint, len(links))
	for _, l := range links {
		children[l.ParentTaskID] = append(children[l.ParentTaskID], l.TaskID)
	}

	ids := []uint{taskID}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}

	return ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id IN ?", ids).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN ?", ids).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN ? OR parent_task_id IN ?", ids, ids).Delete(&models.SubtaskLink{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Task{}).Error
	})
}

// checkAssignment verifies task existence and that both the assigning actor
// and the target user are members of the task's team.
func (ts *TaskStore) checkAssignment(actorID, taskID, assigneeID uint) error {
	teamID, err := ts.teamOf(taskID)
	if err != nil {
		return err
	}
	if err := ts.Members.RequireMember(actorID, teamID); err != nil {
		return err
	}
	// An outsider can never be assigned, no matter who asks.
	return ts.Members.RequireMember(assigneeID, teamID)
}

// Assign records the first assignment of a task. Assigning an already
// assigned task is a conflict; Reassign is the replace operation. As a side
// effect the task's status is reset to open regardless of its prior value.
func (ts *TaskStore) Assign(actorID, taskID, assigneeID uint) error {
	if err := ts.checkAssignment(actorID, taskID, assigneeID); err != nil {
		return err
	}

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		assignment := models.TaskAssignment{TaskID: taskID, UserID: assigneeID}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).Where("id = ?", taskID).
			Update("status", models.TaskStatusOpen).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// Reassign replaces the task's assignee. The prior assignment row is removed
// and the new one inserted inside one transaction, so the unique index on
// task_id keeps the at-most-one invariant even when two reassignments race.
func (ts *TaskStore) Reassign(actorID, taskID, assigneeID uint) error {
	if err := ts.checkAssignment(actorID, taskID, assigneeID); err != nil {
		return err
	}

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		assignment := models.TaskAssignment{TaskID: taskID, UserID: assigneeID}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).Where("id = ?", taskID).
			Update("status", models.TaskStatusOpen).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// assigneesFor fetches the assignee profile for each of the given tasks in
// one query.
func (ts *TaskStore) assigneesFor(taskIDs []uint) (map[uint]models.PublicProfile, error) {
	if len(taskIDs) == 0 {
		return map[uint]models.PublicProfile{}, nil
	}
	var rows []struct {
		TaskID    uint
		UserID    uint
		FirstName string
		LastName  string
		Email     string
	}
	err := ts.DB.Model(&models.TaskAssignment{}).
		Select("task_assignments.task_id", "users.id AS user_id", "users.first_name", "users.last_name", "users.email").
		Joins("JOIN users ON users.id = task_assignments.user_id").
		Where("task_assignments.task_id IN ?", taskIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]models.PublicProfile, len(rows))
	for _, r := range rows {
		out[r.TaskID] = models.PublicProfile{
			UserID:    r.UserID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
		}
	}
	return out, nil
}

// commentsFor fetches the comments for each of the given tasks, enriched
// with their authors, in one query.
func (ts *TaskStore) commentsFor(taskIDs []uint) (map[uint][]CommentWithAuthor, error) {
	out := make(map[uint][]CommentWithAuthor)
	if len(taskIDs) == 0 {
		return out, nil
	}
	var comments []models.TaskComment
	err := ts.DB.Where("task_id IN ?", taskIDs).Order("created_at").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return out, nil
	}

	authorIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	var users []models.User
	if err := ts.DB.Where("id IN ?", authorIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	profiles := make(map[uint]models.PublicProfile, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Public()
	}

	for _, c := range comments {
		out[c.TaskID] = append(out[c.TaskID], CommentWithAuthor{TaskComment: c, Author: profiles[c.UserID]})
	}
	return out, nil
}

// Detail returns the task with its assignee, its comment list and its direct
// subtasks, each subtask carrying its own assignee and comments.
func (ts *TaskStore) Detail(actorID, taskID uint) (*TaskDetail, error) {
	var task models.Task
	err := ts.DB.First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := ts.Members.RequireMember(actorID, task.TeamID); err != nil {
		return nil, err
	}

	var childLinks []models.SubtaskLink
	if err := ts.DB.Where("parent_task_id = ?", taskID).Find(&childLinks).Error; err != nil {
		return nil, err
	}
	childIDs := make([]uint, 0, len(childLinks))
	for _, l := range childLinks {
		childIDs = append(childIDs, l.TaskID)
	}

	var subtasks []models.Task
	if len(childIDs) > 0 {
		if err := ts.DB.Where("id IN ?", childIDs).Order("created_at").Find(&subtasks).Error; err != nil {
			return nil, err
		}
	}

	allIDs := append([]uint{taskID}, childIDs...)
	assignees, err := ts.assigneesFor(allIDs)
	if err != nil {
		return nil, err
	}
	comments, err := ts.commentsFor(allIDs)
	if err != nil {
		return nil, err
	}

	detail := &TaskDetail{
		TaskWithAssignee: TaskWithAssignee{Task: task},
		Comments:         []CommentWithAuthor{},
		Subtasks:         []SubtaskDetail{},
	}
	if p, ok := assignees[taskID]; ok {
		profile := p
		detail.Assignee = &profile
	}
	if c, ok := comments[taskID]; ok {
		detail.Comments = c
	}
	for _, sub := range subtasks {
		sd := SubtaskDetail{
			TaskWithAssignee: TaskWithAssignee{Task: sub},
			Comments:         []CommentWithAuthor{},
		}
		if p, ok := assignees[sub.ID]; ok {
			profile := p
			sd.Assignee = &profile
		}
		if c, ok := comments[sub.ID]; ok {
			sd.Comments = c
		}
		detail.Subtasks = append(detail.Subtasks, sd)
	}
	return detail, nil
}

// List returns the team's tasks with assignees. With topLevelOnly set, tasks
// that appear as someone's subtask are excluded.
func (ts *TaskStore) List(actorID, teamID uint, topLevelOnly bool) ([]TaskWithAssignee, error) {
	if err := ts.Members.RequireMember(actorID, teamID); err != nil {
		return nil, err
	}

	query := ts.DB.Where("team_id = ?", teamID).Order("created_at")
	if topLevelOnly {
		query = query.Where("id NOT IN (?)", ts.DB.Model(&models.SubtaskLink{}).Select("task_id"))
	}
	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	assignees, err := ts.assigneesFor(ids)
	if err != nil {
		return nil, err
	}

	out := make([]TaskWithAssignee, 0, len(tasks))
	for _, t := range tasks {
		row := TaskWithAssignee{Task: t}
		if p, ok := assignees[t.ID]; ok {
			profile := p
			row.Assignee = &profile
		}
		out = append(out, row)
	}
	return out, nil
}

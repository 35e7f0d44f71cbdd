package store

import (
	"errors"

	"gorm.io/gorm"

	"collabhub/models"
)

// CommentStore holds the comments attached to tasks. Its authorization nests
// inside task authorization: membership is always checked against the task's
// team, and edits are restricted to the comment's author. Unlike discussions,
// admins get no override here.
type CommentStore struct {
	DB      *gorm.DB
	Members *MembershipStore
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{DB: db, Members: NewMembershipStore(db)}
}

// Add creates a comment on the task and returns it enriched with the
// author's profile for immediate display.
func (cs *CommentStore) Add(actorID, taskID uint, content string) (*CommentWithAuthor, error) {
	if content == "" {
		return nil, ErrValidation
	}

	var task models.Task
	err := cs.DB.Select("id", "team_id").First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := cs.Members.RequireMember(actorID, task.TeamID); err != nil {
		return nil, err
	}

	comment := models.TaskComment{TaskID: taskID, UserID: actorID, Content: content}
	if err := cs.DB.Create(&comment).Error; err != nil {
		return nil, err
	}

	var author models.User
	if err := cs.DB.First(&author, actorID).Error; err != nil {
		return nil, err
	}
	return &CommentWithAuthor{TaskComment: comment, Author: author.Public()}, nil
}

// find loads a comment scoped to its task; a comment id under the wrong task
// is NotFound, not Forbidden.
func (cs *CommentStore) find(taskID, commentID uint) (*models.TaskComment, error) {
	var comment models.TaskComment
	err := cs.DB.Where("id = ? AND task_id = ?", commentID, taskID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update rewrites a comment's content. Author-only.
func (cs *CommentStore) Update(actorID, taskID, commentID uint, content string) error {
	if content == "" {
		return ErrValidation
	}
	comment, err := cs.find(taskID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return ErrForbidden
	}
	return cs.DB.Model(comment).Update("content", content).Error
}

// Delete removes a comment. Author-only.
func (cs *CommentStore) Delete(actorID, taskID, commentID uint) error {
	comment, err := cs.find(taskID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return ErrForbidden
	}
	return cs.DB.Delete(comment).Error
}

// ListForTask returns the task's comments with author profiles, oldest first.
func (cs *CommentStore) ListForTask(actorID, taskID uint) ([]CommentWithAuthor, error) {
	var task models.Task
	err := cs.DB.Select("id", "team_id").First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := cs.Members.RequireMember(actorID, task.TeamID); err != nil {
		return nil, err
	}

	byTask, err := NewTaskStore(cs.DB).commentsFor([]uint{taskID})
	if err != nil {
		return nil, err
	}
	comments := byTask[taskID]
	if comments == nil {
		comments = []CommentWithAuthor{}
	}
	return comments, nil
}

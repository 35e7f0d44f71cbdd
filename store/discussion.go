package store

import (
	"errors"

	"gorm.io/gorm"

	"collabhub/models"
)

// DiscussionStore holds team discussions and their one-level replies, and
// owns the tree-assembly and cascading-delete logic.
type DiscussionStore struct {
	DB      *gorm.DB
	Members *MembershipStore
}

func NewDiscussionStore(db *gorm.DB) *DiscussionStore {
	return &DiscussionStore{DB: db, Members: NewMembershipStore(db)}
}

// DiscussionWithAuthor is a post merged with its author's public profile.
type DiscussionWithAuthor struct {
	models.Discussion
	Author models.PublicProfile `json:"author"`
}

// DiscussionThread is a parent post with its replies attached.
type DiscussionThread struct {
	DiscussionWithAuthor
	SubDiscussions []DiscussionWithAuthor `json:"subDiscussions"`
}

// Post creates a discussion post. With parentPostID set it becomes a reply:
// the parent must exist, belong to the same team, and not itself be a reply
// (replies nest exactly one level).
func (ds *DiscussionStore) Post(actorID, teamID uint, content string, parentPostID *uint) (*DiscussionWithAuthor, error) {
	if content == "" {
		return nil, ErrValidation
	}
	if err := ds.Members.RequireMember(actorID, teamID); err != nil {
		return nil, err
	}

	if parentPostID != nil {
		var parent models.Discussion
		err := ds.DB.Select("id", "team_id").First(&parent, *parentPostID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if parent.TeamID != teamID {
			return nil, ErrValidation
		}
		var nested int64
		err = ds.DB.Model(&models.SubDiscussionLink{}).
			Where("post_id = ?", *parentPostID).
			Count(&nested).Error
		if err != nil {
			return nil, err
		}
		if nested > 0 {
			return nil, ErrValidation
		}
	}

	post := models.Discussion{TeamID: teamID, UserID: actorID, Content: content}
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if parentPostID != nil {
			link := models.SubDiscussionLink{PostID: post.ID, ParentPostID: *parentPostID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var author models.User
	if err := ds.DB.First(&author, actorID).Error; err != nil {
		return nil, err
	}
	return &DiscussionWithAuthor{Discussion: post, Author: author.Public()}, nil
}

// authorize loads the post and enforces the author-or-admin rule. The admin
// check runs against the team the post actually belongs to, never a
// caller-supplied team id.
func (ds *DiscussionStore) authorize(actorID, postID uint) (*models.Discussion, error) {
	var post models.Discussion
	err := ds.DB.First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if post.UserID == actorID {
		return &post, nil
	}
	admin, err := ds.Members.IsAdmin(actorID, post.TeamID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrForbidden
	}
	return &post, nil
}

// Update rewrites a post's content. Original author or a team admin only.
func (ds *DiscussionStore) Update(actorID, postID uint, content string) error {
	if content == "" {
		return ErrValidation
	}
	post, err := ds.authorize(actorID, postID)
	if err != nil {
		return err
	}
	return ds.DB.Model(post).Update("content", content).Error
}

// Delete removes a post and, when it has replies, every reply and link row
// under it. The reply set is collected first and the deletes run in one
// transaction.
func (ds *DiscussionStore) Delete(actorID, postID uint) error {
	post, err := ds.authorize(actorID, postID)
	if err != nil {
		return err
	}

	var links []models.SubDiscussionLink
	if err := ds.DB.Where("parent_post_id = ?", postID).Find(&links).Error; err != nil {
		return err
	}
	ids := []uint{post.ID}
	for _, l := range links {
		ids = append(ids, l.PostID)
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id IN ? OR parent_post_id = ?", ids, postID).
			Delete(&models.SubDiscussionLink{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Discussion{}).Error
	})
}

// List returns the team's discussions as a two-level tree: parents are posts
// with no incoming reply link, newest first; each carries its replies oldest
// first. Both levels come from one fetch each and are grouped in memory;
// the link table only ever holds one level, so no recursion is needed.
func (ds *DiscussionStore) List(actorID, teamID uint) ([]DiscussionThread, error) {
	if err := ds.Members.RequireMember(actorID, teamID); err != nil {
		return nil, err
	}

	var parents []models.Discussion
	err := ds.DB.
		Where("team_id = ?", teamID).
		Where("id NOT IN (?)", ds.DB.Model(&models.SubDiscussionLink{}).Select("post_id")).
		Order("created_at DESC").
		Find(&parents).Error
	if err != nil {
		return nil, err
	}

	var replies []struct {
		models.Discussion
		ParentPostID uint
	}
	err = ds.DB.Model(&models.Discussion{}).
		Select("discussions.*", "sub_discussion_links.parent_post_id").
		Joins("JOIN sub_discussion_links ON sub_discussion_links.post_id = discussions.id").
		Where("discussions.team_id = ?", teamID).
		Order("discussions.created_at").
		Scan(&replies).Error
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uint, 0, len(parents)+len(replies))
	for _, p := range parents {
		authorIDs = append(authorIDs, p.UserID)
	}
	for _, r := range replies {
		authorIDs = append(authorIDs, r.UserID)
	}
	profiles := map[uint]models.PublicProfile{}
	if len(authorIDs) > 0 {
		var users []models.User
		if err := ds.DB.Where("id IN ?", authorIDs).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			profiles[u.ID] = u.Public()
		}
	}

	byParent := make(map[uint][]DiscussionWithAuthor)
	for _, r := range replies {
		byParent[r.ParentPostID] = append(byParent[r.ParentPostID], DiscussionWithAuthor{
			Discussion: r.Discussion,
			Author:     profiles[r.UserID],
		})
	}

	threads := make([]DiscussionThread, 0, len(parents))
	for _, p := range parents {
		thread := DiscussionThread{
			DiscussionWithAuthor: DiscussionWithAuthor{Discussion: p, Author: profiles[p.UserID]},
			SubDiscussions:       []DiscussionWithAuthor{},
		}
		if subs, ok := byParent[p.ID]; ok {
			thread.SubDiscussions = subs
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

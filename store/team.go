package store

import (
	"errors"

	"gorm.io/gorm"

	"collabhub/models"
)

// TeamStore owns the team lifecycle and membership management. The creator
// of a team becomes its first admin; everything privileged afterwards
// requires the admin role.
type TeamStore struct {
	DB      *gorm.DB
	Members *MembershipStore
}

func NewTeamStore(db *gorm.DB) *TeamStore {
	return &TeamStore{DB: db, Members: NewMembershipStore(db)}
}

// TeamSummary is a team with the caller's role and the member head-count.
type TeamSummary struct {
	models.Team
	Role        string `json:"role"`
	MemberCount int64  `json:"member_count"`
}

// MemberInfo is a member's public profile plus their role on the team.
type MemberInfo struct {
	models.PublicProfile
	Role string `json:"role"`
}

// TeamDetail is the single-team view: the team, the caller's role and the
// full member list.
type TeamDetail struct {
	models.Team
	Role    string       `json:"role"`
	Members []MemberInfo `json:"members"`
}

// Create inserts the team and the creator's admin membership in one
// transaction.
func (ts *TeamStore) Create(actorID uint, name, description string) (*TeamSummary, error) {
	if name == "" {
		return nil, ErrValidation
	}

	team := models.Team{Name: name, Description: description}
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		member := models.TeamMember{TeamID: team.ID, UserID: actorID, Role: models.RoleAdmin}
		return tx.Create(&member).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	return &TeamSummary{Team: team, Role: models.RoleAdmin, MemberCount: 1}, nil
}

// ListForUser returns every team the user belongs to, with role and member
// count.
func (ts *TeamStore) ListForUser(userID uint) ([]TeamSummary, error) {
	var memberships []models.TeamMember
	if err := ts.DB.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	out := make([]TeamSummary, 0, len(memberships))
	for _, m := range memberships {
		var team models.Team
		if err := ts.DB.First(&team, m.TeamID).Error; err != nil {
			return nil, err
		}
		var count int64
		if err := ts.DB.Model(&models.TeamMember{}).Where("team_id = ?", m.TeamID).Count(&count).Error; err != nil {
			return nil, err
		}
		out = append(out, TeamSummary{Team: team, Role: m.Role, MemberCount: count})
	}
	return out, nil
}

func (ts *TeamStore) membersOf(teamID uint) ([]MemberInfo, error) {
	var rows []struct {
		UserID    uint
		FirstName string
		LastName  string
		Email     string
		Role      string
	}
	err := ts.DB.Model(&models.TeamMember{}).
		Select("users.id AS user_id", "users.first_name", "users.last_name", "users.email", "team_members.role").
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.team_id = ?", teamID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	members := make([]MemberInfo, 0, len(rows))
	for _, r := range rows {
		members = append(members, MemberInfo{
			PublicProfile: models.PublicProfile{
				UserID:    r.UserID,
				FirstName: r.FirstName,
				LastName:  r.LastName,
				Email:     r.Email,
			},
			Role: r.Role,
		})
	}
	return members, nil
}

// Get returns the team with its member list. A team the caller does not
// belong to is reported as NotFound, not Forbidden, so outsiders cannot
// probe which team ids exist.
func (ts *TeamStore) Get(actorID, teamID uint) (*TeamDetail, error) {
	role, err := ts.Members.Role(actorID, teamID)
	if err != nil {
		return nil, err
	}
	var team models.Team
	if err := ts.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	members, err := ts.membersOf(teamID)
	if err != nil {
		return nil, err
	}
	return &TeamDetail{Team: team, Role: role, Members: members}, nil
}

// ListMembers returns all users on the team with their roles.
func (ts *TeamStore) ListMembers(actorID, teamID uint) ([]MemberInfo, error) {
	if err := ts.Members.RequireMember(actorID, teamID); err != nil {
		return nil, err
	}
	return ts.membersOf(teamID)
}

// Update rewrites the team's name and description. Any member may do this.
func (ts *TeamStore) Update(actorID, teamID uint, name, description string) error {
	if name == "" {
		return ErrValidation
	}
	var team models.Team
	if err := ts.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := ts.Members.RequireMember(actorID, teamID); err != nil {
		return err
	}
	return ts.DB.Model(&team).Updates(map[string]interface{}{
		"name":        name,
		"description": description,
	}).Error
}

// AddMembersByEmail adds existing users to the team as members. Admin-only.
// Emails with no matching account are skipped; when none match at all the
// call fails with NotFound. Users already on the team keep their current
// role. Returns the full member list afterwards.
func (ts *TeamStore) AddMembersByEmail(actorID, teamID uint, emails []string) ([]MemberInfo, error) {
	if len(emails) == 0 {
		return nil, ErrValidation
	}
	var team models.Team
	if err := ts.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := ts.Members.RequireAdmin(actorID, teamID); err != nil {
		return nil, err
	}

	var users []models.User
	if err := ts.DB.Where("email IN ?", emails).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			var existing int64
			err := tx.Model(&models.TeamMember{}).
				Where("user_id = ? AND team_id = ?", u.ID, teamID).
				Count(&existing).Error
			if err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			member := models.TeamMember{TeamID: teamID, UserID: u.ID, Role: models.RoleMember}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ts.membersOf(teamID)
}

func (ts *TeamStore) adminCount(teamID uint) (int64, error) {
	var count int64
	err := ts.DB.Model(&models.TeamMember{}).
		Where("team_id = ? AND role = ?", teamID, models.RoleAdmin).
		Count(&count).Error
	return count, err
}

// RemoveMember drops a user from the team. Admin-only. The last remaining
// admin cannot be removed, otherwise the team would be left unmanageable.
func (ts *TeamStore) RemoveMember(actorID, teamID, userID uint) error {
	if err := ts.Members.RequireAdmin(actorID, teamID); err != nil {
		return err
	}
	var member models.TeamMember
	err := ts.DB.Where("user_id = ? AND team_id = ?", userID, teamID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if member.Role == models.RoleAdmin {
		admins, err := ts.adminCount(teamID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrConflict
		}
	}

	return ts.DB.Delete(&member).Error
}

// UpdateRole changes a member's role. Admin-only, and demoting the last
// admin is refused for the same reason removal is.
func (ts *TeamStore) UpdateRole(actorID, teamID, userID uint, role string) error {
	if role != models.RoleMember && role != models.RoleAdmin {
		return ErrValidation
	}
	if err := ts.Members.RequireAdmin(actorID, teamID); err != nil {
		return err
	}
	var member models.TeamMember
	err := ts.DB.Where("user_id = ? AND team_id = ?", userID, teamID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if member.Role == models.RoleAdmin && role == models.RoleMember {
		admins, err := ts.adminCount(teamID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrConflict
		}
	}

	return ts.DB.Model(&member).Update("role", role).Error
}

// Delete removes the team and everything scoped to it: memberships, the
// whole task graph (tasks, links, assignments, comments), discussions and
// their links, notification rows and file metadata. Returns the file rows
// that were deleted so the caller can clean up the object store. Runs as one
// transaction.
func (ts *TeamStore) Delete(actorID, teamID uint) ([]models.File, error) {
	var team models.Team
	err := ts.DB.First(&team, teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := ts.Members.RequireAdmin(actorID, teamID); err != nil {
		return nil, err
	}

	var files []models.File
	if err := ts.DB.Where("team_id = ?", teamID).Find(&files).Error; err != nil {
		return nil, err
	}

	err = ts.DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("team_id = ?", teamID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ? OR parent_task_id IN ?", taskIDs, taskIDs).Delete(&models.SubtaskLink{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		var postIDs []uint
		if err := tx.Model(&models.Discussion{}).Where("team_id = ?", teamID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ? OR parent_post_id IN ?", postIDs, postIDs).Delete(&models.SubDiscussionLink{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Discussion{}).Error; err != nil {
				return err
			}
		}

		var notificationIDs []uint
		if err := tx.Model(&models.Notification{}).Where("team_id = ?", teamID).Pluck("id", &notificationIDs).Error; err != nil {
			return err
		}
		if len(notificationIDs) > 0 {
			if err := tx.Where("notification_id IN ?", notificationIDs).Delete(&models.NotificationRecipient{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", notificationIDs).Delete(&models.Notification{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("team_id = ?", teamID).Delete(&models.File{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

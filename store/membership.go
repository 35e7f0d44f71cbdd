package store

import (
	"errors"

	"gorm.io/gorm"

	"collabhub/models"
)

// MembershipStore is the authorization gate. Every team-scoped read or write
// in the other stores goes through IsMember, and the privileged operations
// (remove member, change role, delete team, delete file) additionally go
// through IsAdmin.
type MembershipStore struct {
	DB *gorm.DB
}

func NewMembershipStore(db *gorm.DB) *MembershipStore {
	return &MembershipStore{DB: db}
}

// IsMember reports whether a membership row exists for (userID, teamID).
func (ms *MembershipStore) IsMember(userID, teamID uint) (bool, error) {
	var count int64
	err := ms.DB.Model(&models.TeamMember{}).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAdmin reports whether (userID, teamID) exists with the admin role.
func (ms *MembershipStore) IsAdmin(userID, teamID uint) (bool, error) {
	var count int64
	err := ms.DB.Model(&models.TeamMember{}).
		Where("user_id = ? AND team_id = ? AND role = ?", userID, teamID, models.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RequireMember returns ErrForbidden when the user is not on the team.
func (ms *MembershipStore) RequireMember(userID, teamID uint) error {
	ok, err := ms.IsMember(userID, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin returns ErrForbidden when the user is not an admin of the team.
func (ms *MembershipStore) RequireAdmin(userID, teamID uint) error {
	ok, err := ms.IsAdmin(userID, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// Role returns the caller's role on the team, or ErrNotFound when no
// membership row exists.
func (ms *MembershipStore) Role(userID, teamID uint) (string, error) {
	var member models.TeamMember
	err := ms.DB.Where("user_id = ? AND team_id = ?", userID, teamID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

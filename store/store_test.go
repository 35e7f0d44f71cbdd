package store

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"collabhub/config"
	"collabhub/models"
)

// newTestDB opens a fresh in-memory database with the full schema. Open
// connections are capped at one so every query sees the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDB(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, firstName, email string) *models.User {
	t.Helper()
	user := models.User{
		FirstName:    firstName,
		LastName:     "Tester",
		Email:        email,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// createTeam creates a team through the store so the creator ends up as
// admin, then adds the extra users as plain members.
func createTeam(t *testing.T, db *gorm.DB, creatorID uint, name string, memberIDs ...uint) *models.Team {
	t.Helper()
	summary, err := NewTeamStore(db).Create(creatorID, name, "")
	require.NoError(t, err)
	for _, id := range memberIDs {
		member := models.TeamMember{TeamID: summary.ID, UserID: id, Role: models.RoleMember}
		require.NoError(t, db.Create(&member).Error)
	}
	return &summary.Team
}

func createTask(t *testing.T, db *gorm.DB, actorID, teamID uint, name string, parentID *uint) *models.Task {
	t.Helper()
	task, err := NewTaskStore(db).Create(actorID, CreateTaskInput{
		Name:         name,
		TeamID:       teamID,
		ParentTaskID: parentID,
	})
	require.NoError(t, err)
	return task
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

// uniqueEmail avoids collisions between helpers within a single test.
var emailSeq int

func nextEmail(prefix string) string {
	emailSeq++
	return fmt.Sprintf("%s%d@example.com", prefix, emailSeq)
}

func ptr[T any](v T) *T {
	return &v
}

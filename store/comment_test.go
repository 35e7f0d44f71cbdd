package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"collabhub/models"
)

func TestAddCommentChecks(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "Alice", nextEmail("alice"))
	eve := createUser(t, db, "Eve", nextEmail("eve"))
	team := createTeam(t, db, alice.ID, "Eng")
	task := createTask(t, db, alice.ID, team.ID, "Spec", nil)

	cs := NewCommentStore(db)

	_, err := cs.Add(alice.ID, task.ID, "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = cs.Add(alice.ID, 9999, "hello")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = cs.Add(eve.ID, task.ID, "hello")
	require.ErrorIs(t, err, ErrForbidden)

	comment, err := cs.Add(alice.ID, task.ID, "hello")
	require.NoError(t, err)
	require.Equal(t, alice.ID, comment.Author.UserID)
	require.Equal(t, "hello", comment.Content)
}

func TestCommentEditsAreAuthorOnly(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "Admin", nextEmail("admin"))
	author := createUser(t, db, "Author", nextEmail("author"))
	team := createTeam(t, db, admin.ID, "Eng", author.ID)
	task := createTask(t, db, admin.ID, team.ID, "Spec", nil)

	cs := NewCommentStore(db)
	comment, err := cs.Add(author.ID, task.ID, "original")
	require.NoError(t, err)

	// Even the team admin cannot touch someone else's comment.
	require.ErrorIs(t, cs.Update(admin.ID, task.ID, comment.ID, "edited"), ErrForbidden)
	require.ErrorIs(t, cs.Delete(admin.ID, task.ID, comment.ID), ErrForbidden)

	// A comment id under the wrong task is NotFound.
	otherTask := createTask(t, db, admin.ID, team.ID, "Other", nil)
	require.ErrorIs(t, cs.Update(author.ID, otherTask.ID, comment.ID, "edited"), ErrNotFound)

	require.NoError(t, cs.Update(author.ID, task.ID, comment.ID, "edited"))
	require.NoError(t, cs.Delete(author.ID, task.ID, comment.ID))
	require.EqualValues(t, 0, countRows(t, db, &models.TaskComment{}))
}

func TestListCommentsForTask(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "Alice", nextEmail("alice"))
	bob := createUser(t, db, "Bob", nextEmail("bob"))
	team := createTeam(t, db, alice.ID, "Eng", bob.ID)
	task := createTask(t, db, alice.ID, team.ID, "Spec", nil)

	cs := NewCommentStore(db)
	_, err := cs.Add(alice.ID, task.ID, "first")
	require.NoError(t, err)
	_, err = cs.Add(bob.ID, task.ID, "second")
	require.NoError(t, err)

	comments, err := cs.ListForTask(bob.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "first", comments[0].Content)
	require.Equal(t, bob.ID, comments[1].Author.UserID)

	empty := createTask(t, db, alice.ID, team.ID, "Empty", nil)
	comments, err = cs.ListForTask(alice.ID, empty.ID)
	require.NoError(t, err)
	require.NotNil(t, comments)
	require.Empty(t, comments)
}

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"collabhub/models"
)

func TestPostDiscussionChecks(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "Alice", nextEmail("alice"))
	eve := createUser(t, db, "Eve", nextEmail("eve"))
	team := createTeam(t, db, alice.ID, "Eng")
	otherTeam := createTeam(t, db, alice.ID, "Ops")

	ds := NewDiscussionStore(db)

	_, err := ds.Post(eve.ID, team.ID, "hello", nil)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = ds.Post(alice.ID, team.ID, "", nil)
	require.ErrorIs(t, err, ErrValidation)

	post, err := ds.Post(alice.ID, team.ID, "hello", nil)
	require.NoError(t, err)
	require.Equal(t, alice.ID, post.Author.UserID)

	// Reply to a missing parent, then to a parent from another team.
	_, err = ds.Post(alice.ID, team.ID, "re", ptr(uint(9999)))
	require.ErrorIs(t, err, ErrNotFound)
	_, err = ds.Post(alice.ID, otherTeam.ID, "re", &post.ID)
	require.ErrorIs(t, err, ErrValidation)

	// Replies nest exactly one level.
	reply, err := ds.Post(alice.ID, team.ID, "re", &post.ID)
	require.NoError(t, err)
	_, err = ds.Post(alice.ID, team.ID, "re-re", &reply.ID)
	require.ErrorIs(t, err, ErrValidation)
}

func TestListDiscussionsTree(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "Alice", nextEmail("alice"))
	bob := createUser(t, db, "Bob", nextEmail("bob"))
	team := createTeam(t, db, alice.ID, "Eng", bob.ID)

	ds := NewDiscussionStore(db)

	first, err := ds.Post(alice.ID, team.ID, "first", nil)
	require.NoError(t, err)
	// Force distinct timestamps so the newest-first ordering is observable.
	require.NoError(t, db.Model(&models.Discussion{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	second, err := ds.Post(bob.ID, team.ID, "second", nil)
	require.NoError(t, err)

	replyA, err := ds.Post(bob.ID, team.ID, "reply a", &first.ID)
	require.NoError(t, err)
	replyB, err := ds.Post(alice.ID, team.ID, "reply b", &first.ID)
	require.NoError(t, err)

	threads, err := ds.List(alice.ID, team.ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	// Newest parent first; replies never appear at the top level.
	require.Equal(t, second.ID, threads[0].ID)
	require.Empty(t, threads[0].SubDiscussions)
	require.Equal(t, first.ID, threads[1].ID)
	require.Len(t, threads[1].SubDiscussions, 2)

	replyIDs := []uint{threads[1].SubDiscussions[0].ID, threads[1].SubDiscussions[1].ID}
	require.ElementsMatch(t, []uint{replyA.ID, replyB.ID}, replyIDs)
	require.Equal(t, bob.ID, threads[1].SubDiscussions[0].Author.UserID)

	eve := createUser(t, db, "Eve", nextEmail("eve"))
	_, err = ds.List(eve.ID, team.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDiscussionAuthorization(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "Admin", nextEmail("admin"))
	author := createUser(t, db, "Author", nextEmail("author"))
	mate := createUser(t, db, "Mate", nextEmail("mate"))
	team := createTeam(t, db, admin.ID, "Eng", author.ID, mate.ID)

	ds := NewDiscussionStore(db)
	post, err := ds.Post(author.ID, team.ID, "hello", nil)
	require.NoError(t, err)

	// A plain member who is not the author can neither edit nor delete.
	require.ErrorIs(t, ds.Update(mate.ID, post.ID, "edited"), ErrForbidden)
	require.ErrorIs(t, ds.Delete(mate.ID, post.ID), ErrForbidden)

	// The author can edit; the team admin can delete.
	require.NoError(t, ds.Update(author.ID, post.ID, "edited"))
	require.NoError(t, ds.Delete(admin.ID, post.ID))

	require.ErrorIs(t, ds.Update(author.ID, post.ID, "again"), ErrNotFound)
}

func TestDeleteDiscussionCascadesReplies(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "Alice", nextEmail("alice"))
	bob := createUser(t, db, "Bob", nextEmail("bob"))
	team := createTeam(t, db, alice.ID, "Eng", bob.ID)

	ds := NewDiscussionStore(db)
	parent, err := ds.Post(alice.ID, team.ID, "parent", nil)
	require.NoError(t, err)
	_, err = ds.Post(bob.ID, team.ID, "reply 1", &parent.ID)
	require.NoError(t, err)
	_, err = ds.Post(alice.ID, team.ID, "reply 2", &parent.ID)
	require.NoError(t, err)
	other, err := ds.Post(bob.ID, team.ID, "other", nil)
	require.NoError(t, err)

	require.NoError(t, ds.Delete(alice.ID, parent.ID))

	threads, err := ds.List(alice.ID, team.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Equal(t, other.ID, threads[0].ID)

	require.EqualValues(t, 1, countRows(t, db, &models.Discussion{}))
	require.EqualValues(t, 0, countRows(t, db, &models.SubDiscussionLink{}))
}

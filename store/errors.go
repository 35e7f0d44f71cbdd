package store

import "errors"

// Domain errors returned by the stores. Controllers translate these into
// HTTP statuses; anything else is a server error.
var (
	// ErrNotFound means the referenced task, post, team, comment or file
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor (or the target user of an assignment) is
	// not a member of the team, or lacks the admin role where one is
	// required.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means a uniqueness constraint was violated, e.g. a
	// duplicate email at signup or a double-assignment race.
	ErrConflict = errors.New("conflict")

	// ErrValidation means required input was missing or malformed. Raised
	// before any state is touched.
	ErrValidation = errors.New("invalid input")
)

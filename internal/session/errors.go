package session

import "errors"

var (
	// ErrQuestionNotFound is returned when the submitted question id does
	// not exist in the question store.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrNoQuestionAvailable is returned when no question exists at the
	// user's current difficulty tier.
	ErrNoQuestionAvailable = errors.New("no question available at difficulty")

	// ErrDuplicateSubmission is reported by the answer log store when the
	// (user, idempotency key) pair has already been recorded.
	ErrDuplicateSubmission = errors.New("duplicate submission")

	// ErrVersionConflict is reported by the progress store when an
	// optimistic update lost against a concurrent writer.
	ErrVersionConflict = errors.New("progress version conflict")
)

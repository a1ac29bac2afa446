package domain

import "errors"

var (
	// ErrInvalidTransition is returned when an operation is not legal in the current session phase.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrUnknownQuestion indicates a question ID with no ledger entry.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrIndexOutOfRange indicates navigation outside the question set.
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrInvalidSelection indicates a choice that is not an option of its question.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrInvalidUser is returned when the user record fails validation.
	ErrInvalidUser = errors.New("invalid user")
	// ErrInvalidQuestionSet indicates malformed quiz content.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrQuestionSetNotFound indicates the quiz content could not be loaded.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrStateNotFound means no session record is stored under the key.
	ErrStateNotFound = errors.New("session state not found")
)

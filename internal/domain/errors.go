package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz does not exist (or was deleted).
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound indicates no profile exists for the authenticated identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuizNotLive is returned when a student submits to an inactive quiz.
	ErrQuizNotLive = errors.New("quiz is not currently live")
	// ErrClassMismatch is returned when a student acts on a quiz outside their class.
	ErrClassMismatch = errors.New("quiz is not for your class")
	// ErrNotOwner is returned when a teacher mutates a quiz they do not own.
	ErrNotOwner = errors.New("only the quiz owner may do this")
	// ErrAlreadySubmitted is the expected conflict when a second submission
	// for the same (quiz, student) pair reaches the store.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrRoleConflict is returned when registration asks for a role that
	// differs from the stored profile.
	ErrRoleConflict = errors.New("user already exists with a different role")
)

// ValidationError marks malformed or incomplete input. It is surfaced to
// the caller with its message and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

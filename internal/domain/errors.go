package domain

import "errors"

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned when the auth provider rejects a token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrValidation indicates a malformed submission payload.
	ErrValidation = errors.New("must submit exactly 5 answers")
	// ErrNoQuestions is returned when the global question pool cannot fill a quiz.
	ErrNoQuestions = errors.New("no questions found")
	// ErrAttemptNotFound indicates the requested attempt does not exist.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrForbidden indicates the attempt exists but belongs to another user.
	ErrForbidden = errors.New("forbidden")
)

package usecase

import "errors"

var (
	// ErrValidation reports missing or malformed input. Never retried and
	// never reaches storage.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream reports a failed translation/generation collaborator call.
	ErrUpstream = errors.New("upstream collaborator failed")

	// ErrDuplicate reports a username/email collision when uniqueness is
	// enforced.
	ErrDuplicate = errors.New("user already exists")
)

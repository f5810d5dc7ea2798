package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. The message is shared by
	// the unknown-email and wrong-password paths on purpose.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

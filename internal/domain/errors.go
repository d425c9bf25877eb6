package domain

import "errors"

// Error taxonomy shared by the lifecycle manager, the store, and the HTTP
// surface. Callers match with errors.Is; the concrete cause is wrapped.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("session is not in progress")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage failure")
)

// IsNotFound reports whether err is a missing game, player, or session.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

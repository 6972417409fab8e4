package apperrors

import "errors"

// Sentinel errors shared across repositories, services and handlers.
// Wrap with fmt.Errorf("...: %w", Err...) and test with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrInternal   = errors.New("internal error")
)

// IsNotFoundOrForbidden reports whether err should be surfaced to API
// callers as a generic not-found response. Membership failures deliberately
// map to the same body so chat existence is not leaked to non-members.
func IsNotFoundOrForbidden(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}

// Package errs holds the error taxonomy shared by adapters, use cases and
// the HTTP layer. Callers wrap these with fmt.Errorf("...: %w", err) and
// test for them with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidInput reports a malformed date or parameter. Never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRange reports a to-date that precedes its from-date.
	ErrRange = errors.New("to date precedes from date")
	// ErrMissingEndpoint reports a route query with neither origin nor destination.
	ErrMissingEndpoint = errors.New("origin or destination is required")
	// ErrProviderUnavailable reports a network failure, timeout or non-success
	// status from an upstream provider. Recoverable: the next provider is tried.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrUnsupported reports that a provider does not offer an operation.
	ErrUnsupported = errors.New("operation not supported by provider")
	// ErrUnknownWeekday reports a day code missing from the weekday table.
	ErrUnknownWeekday = errors.New("unknown weekday")
	// ErrGeolocationUnavailable reports that a client location could not be resolved.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	// ErrDatabaseOperationFailed reports a persistence failure. The transaction is rolled back.
	ErrDatabaseOperationFailed = errors.New("database operation failed")
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
)

// IsRecoverable reports whether err allows falling through to the next provider.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrUnsupported)
}

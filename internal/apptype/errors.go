package apptype

import "errors"

// Error taxonomy shared across the storage and suggestion layers. Callers
// classify with errors.Is; layers annotate with fmt.Errorf("...: %w", ...).
var (
	// ErrNotFound signals that a referenced entity, relationship, or admin
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidData signals input or stored data that cannot be used as-is
	// (unknown entity type, non-object metadata, empty names).
	ErrInvalidData = errors.New("invalid data")

	// ErrUnavailable signals that the storage collaborator could not supply
	// the corpus. It is propagated, never retried here.
	ErrUnavailable = errors.New("storage unavailable")
)

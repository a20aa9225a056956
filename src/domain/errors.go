package domain

import "errors"

var (
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidArgument is returned when a single attribute is set to nil, a
	// dot-path assignment runs into a scalar value, or a stored entity is
	// updated or deleted without a value in its primary key attribute.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingPrimaryKey is returned when an entity type without a primary key
	// is asked to update or delete a row.
	ErrMissingPrimaryKey = errors.New("a model without a primary key cannot be updated or deleted")

	ErrNotPersisted = errors.New("entity has not been persisted")

	ErrUnimplemented = errors.New("unimplemented method")

	ErrUnsupported = errors.New("operation not supported by backend")

	// ErrBackendFailure wraps every error surfaced by a storage backend.
	ErrBackendFailure = errors.New("backend failure")

	ErrNoBackend = errors.New("no backend configured")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

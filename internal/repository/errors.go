package repository

import "errors"

// Error taxonomy shared by both backends. Callers check these with
// errors.Is; anything else that bubbles up is an unclassified backend
// failure and propagates unchanged.
var (
	// ErrNotInitialized is returned when a repository operation runs before
	// the backend finished startup or after it was closed. The call failed;
	// retry after initialization.
	ErrNotInitialized = errors.New("storage backend not initialized")

	// ErrEmailExists is returned by member creation when the email is
	// already registered.
	ErrEmailExists = errors.New("email already registered")

	// ErrAlreadyWishlisted is returned when a member wishlists the same
	// (target type, target id) pair twice.
	ErrAlreadyWishlisted = errors.New("target already wishlisted")

	// ErrInvalidCredentials is returned by authentication on a bad email or
	// password, or a withdrawn account.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidTargetType is returned when a wishlist operation names an
	// unrecognized target type. This is a caller bug, not a transient
	// condition.
	ErrInvalidTargetType = errors.New("unrecognized wishlist target type")
)

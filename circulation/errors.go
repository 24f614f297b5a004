package circulation

import (
	"errors"
	"fmt"
)

// Conflict reasons. They stay machine-readable so callers and logs can tell
// precondition failures apart while the displayed message remains a single
// human-readable line.
const (
	ReasonNoCopiesAvailable = "NoCopiesAvailable"
	ReasonAlreadyReturned   = "AlreadyReturned"
	ReasonHasBorrowRecords  = "HasBorrowRecords"
	ReasonGenreInUse        = "GenreInUse"
	ReasonDuplicateGenre    = "DuplicateGenre"
	ReasonDuplicateUsername = "DuplicateUsername"
)

// ErrInvalidCredentials is returned by Authenticate for a bad username or
// password, or an inactive account. Deliberately vague.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports malformed input, caught before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a violated state precondition: no copies available,
// record already returned, delete blocked by references.
type ConflictError struct {
	Reason string
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// AuthorizationError reports that the caller's role lacks permission for an
// operation. It is raised before any mutating call is issued.
type AuthorizationError struct {
	Role Role
	Op   Operation
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not perform %q", e.Role, e.Op)
}

// TransientError wraps a backend timeout or transport failure. Safe to
// retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: backend unavailable: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ConflictReason extracts the machine-readable reason from a conflict error,
// or "" when err is not one.
func ConflictReason(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}

// IsAuthorization reports whether err is (or wraps) an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

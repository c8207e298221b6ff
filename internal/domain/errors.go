package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports an unknown id. Callers surface it, never retry.
var ErrNotFound = errors.New("not found")

// ErrForbidden reports an actor acting on a record they are not a party to.
var ErrForbidden = errors.New("forbidden")

// ValidationError rejects malformed input before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is an optimistic-concurrency loss: the record moved out of
// the expected state before our update landed. Never retried transparently.
type ConflictError struct {
	Resource string
	ID       string
	Expected string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is no longer %s", e.Resource, e.ID, e.Expected)
}

// StaleListingError lists every cart entry that is no longer purchasable so
// the caller can prune selectively instead of discarding the whole cart.
type StaleListingError struct {
	ListingIDs []string
}

func (e *StaleListingError) Error() string {
	return "listings no longer available: " + strings.Join(e.ListingIDs, ", ")
}

// DependencyError wraps a collaborator failure (blob store, identity
// provider). The core assumes no recovery; retry policy is the caller's.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *DependencyError) Unwrap() error { return e.Err }

// ABOUTME: Common storage errors
// ABOUTME: Enables consistent error handling across storage implementations

package storage

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested field document does not exist.
var ErrNotFound = errors.New("not found")

// ErrReadOnly is returned when attempting to write to a read-only store.
var ErrReadOnly = errors.New("storage is read-only")

// ErrUnauthorized is returned when an operation is attempted without a user.
var ErrUnauthorized = errors.New("not signed in: no user id")

// RequireUser fails with ErrUnauthorized when userID is blank.
func RequireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	return nil
}

package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for store lookups.
var (
	// ErrStoreNotFound indicates no settings exist for the store.
	ErrStoreNotFound = errors.New("store not found")

	// ErrInvalidStoreID indicates a store ID that is not a valid subdomain label.
	ErrInvalidStoreID = errors.New("invalid store id")

	// ErrInvalidSettings indicates settings that cannot be turned into a calculator.
	ErrInvalidSettings = errors.New("invalid settings")
)

var storeIDPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// NormalizeStoreID lower-cases id and checks it is a subdomain label.
func NormalizeStoreID(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if !storeIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStoreID, id)
	}
	return id, nil
}

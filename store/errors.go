package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSchema means a required table does not exist. This is a
	// configuration problem that needs operator action (run migrations),
	// not a transient failure, and must never be treated as zero results.
	ErrMissingSchema = errors.New("database schema not set up")

	// ErrNotFound means the identified row does not exist.
	ErrNotFound = errors.New("not found")
)

// classify wraps a driver error, mapping the "no such table" class onto
// ErrMissingSchema so callers can distinguish it from transient failures.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%s: %w: %v", op, ErrMissingSchema, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

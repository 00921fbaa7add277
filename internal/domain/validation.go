package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants
const (
	MaxContractIDLength = 128
	MaxEventsPerPass    = 100000
)

var contractIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateContractID validates a contract identifier.
func ValidateContractID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidContractID)
	}

	if len(id) > MaxContractIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidContractID, MaxContractIDLength)
	}

	if !contractIDRegex.MatchString(id) {
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidContractID, id)
	}

	return nil
}

// ValidateEventCount rejects event sequences longer than limit.
// A non-positive limit falls back to MaxEventsPerPass.
func ValidateEventCount(n, limit int) error {
	if limit <= 0 {
		limit = MaxEventsPerPass
	}

	if n > limit {
		return fmt.Errorf("%w: %d events exceeds limit of %d", ErrTooManyEvents, n, limit)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}

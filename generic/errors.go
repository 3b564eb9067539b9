/*
errors.go - Centralized error types for the lending engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Engines return these directly; outer layers (store, api, cli) wrap them
  with context and map them to status codes or exit messages.

ERROR CATEGORIES:
  1. Argument errors - non-positive term, negative principal/rate, bad dates
  2. Tier errors     - loan amount matched by no commission tier
  3. Lookup errors   - missing rate table or loan (outer layers only)
  4. Conflict errors - duplicate loan id (outer layers only)

DIVISION BY ZERO:
  Never signalled. Zero rate (annuity) and zero total amount (average
  commission rate) are explicit branches that return defined values.

USAGE:
  if errors.Is(err, generic.ErrNoApplicableTier) {
      // show "amount outside rate table"
  }

SEE ALSO:
  - amortization/: returns ArgumentError
  - commission/: returns ArgumentError and NoTierError
  - api/handlers.go: maps these errors to HTTP status
*/
package generic

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidArgument is returned when an input violates a precondition.
	// Nothing is partially computed when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoApplicableTier is returned when no tier of a rate table contains
	// the loan amount (negative amount, or a table with gaps).
	ErrNoApplicableTier = errors.New("no applicable commission tier")

	// ErrNotFound is returned by stores when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by stores when a record with the same id exists.
	ErrConflict = errors.New("already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ArgumentError names the offending input.
type ArgumentError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// NoTierError carries the amount that fell outside every tier.
type NoTierError struct {
	Amount decimal.Decimal
}

func (e *NoTierError) Error() string {
	return fmt.Sprintf("no applicable commission tier for amount %s", e.Amount.String())
}

func (e *NoTierError) Unwrap() error {
	return ErrNoApplicableTier
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// RequirePositive returns an ArgumentError when n < 1.
func RequirePositive(field string, n int) error {
	if n < 1 {
		return &ArgumentError{Field: field, Value: fmt.Sprint(n), Reason: "must be a positive integer"}
	}
	return nil
}

// RequireTerm returns an ArgumentError unless 1 <= n <= limit.
func RequireTerm(field string, n, limit int) error {
	if err := RequirePositive(field, n); err != nil {
		return err
	}
	if n > limit {
		return &ArgumentError{Field: field, Value: fmt.Sprint(n), Reason: fmt.Sprintf("must be at most %d", limit)}
	}
	return nil
}

// RequireNonNegative returns an ArgumentError when d < 0.
func RequireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return &ArgumentError{Field: field, Value: d.String(), Reason: "must not be negative"}
	}
	return nil
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNoApplicableTier)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

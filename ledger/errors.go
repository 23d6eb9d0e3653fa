// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// InvariantError reports a broken consensus-safety invariant.
// It is never expected in correct operation and must not be retried.
type InvariantError struct {
	message string
}

// NewInvariantError creates an InvariantError.
func NewInvariantError(format string, args ...any) *InvariantError {
	return &InvariantError{message: fmt.Sprintf(format, args...)}
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.message
}

// ValidationError reports a rejected property assignment.
type ValidationError struct {
	Property string
	message  string
}

// NewValidationError creates a ValidationError for the named property.
func NewValidationError(property string, format string, args ...any) *ValidationError {
	return &ValidationError{Property: property, message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Property == "" {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.Property, e.message)
}

// IsInvariantViolation reports whether err wraps an InvariantError.
func IsInvariantViolation(err error) bool {
	if err == nil {
		return false
	}
	var ie *InvariantError
	return errors.As(err, &ie)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

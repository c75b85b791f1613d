/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package watch

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrFormat             = errors.New("malformed clock time")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrAllocationOverflow = errors.New("allocation does not partition slots")
)

// FormatError reports a clock-time string that could not be parsed.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Input, e.Reason)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// ConfigurationError reports inputs the core cannot plan with: no squads,
// non-positive squad sizes, an out-of-range squad index or an empty interval.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// AllocationOverflowError is returned when computed squad ranges do not
// cover [0, Slots) exactly once.
type AllocationOverflowError struct {
	Slots  int
	Ranges []Range
	Reason string
}

func (e *AllocationOverflowError) Error() string {
	return fmt.Sprintf("allocation of %d slots over %d squads: %s", e.Slots, len(e.Ranges), e.Reason)
}

// Is reports whether target is ErrAllocationOverflow.
func (e *AllocationOverflowError) Is(target error) bool { return target == ErrAllocationOverflow }

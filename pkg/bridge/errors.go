// Copyright 2024-2026 Aiku AI

package bridge

import (
	"errors"
	"fmt"
)

// ErrDuplicateRoom is returned when a room identifier is registered twice.
var ErrDuplicateRoom = errors.New("room already registered")

// InvalidConfigError reports a fatal configuration problem found while
// building the bridge registry. It aborts startup; it is never produced
// during steady-state routing.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid config: " + e.Reason
}

func invalidConfigf(format string, args ...any) *InvalidConfigError {
	return &InvalidConfigError{Reason: fmt.Sprintf(format, args...)}
}

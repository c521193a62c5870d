package database

import (
	"errors"
	"fmt"
	"strings"
)

// ErrQueueFull is returned when more callers wait for a connection than the
// configured queue limit allows.
var ErrQueueFull = errors.New("connection queue limit reached")

// ErrUnknownDriver reports a driver name with no registered dialect.
var ErrUnknownDriver = errors.New("unknown database driver")

// ConnectionError reports a failure to establish a connection: host
// unreachable, credentials rejected, unknown database.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DefaultedError is returned by strict validation when required keys were
// resolved from built-in defaults.
type DefaultedError struct {
	Keys []string
}

func (e *DefaultedError) Error() string {
	return fmt.Sprintf("configuration not set explicitly: %s", strings.Join(e.Keys, ", "))
}

package runner

import (
	"fmt"

	"github.com/loykin/schemarun/internal/database"
)

// FileAccessError reports a script path that does not exist or cannot be read.
// No database operation is attempted when it is returned.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("read schema file %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// ConnectionError is returned when the target database cannot be reached.
type ConnectionError = database.ConnectionError

// ExecutionError wraps an engine rejection of the submitted SQL (syntax
// error, constraint violation, missing table or column). The engine message
// is preserved in Err.
type ExecutionError struct {
	Script string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %s: %v", e.Script, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// QueryScriptName labels ad hoc query text that has no file path.
const QueryScriptName = "<query>"

// Script is one immutable unit of work: the SQL text and where it came from.
type Script struct {
	Path     string
	Text     string
	Checksum string
}

// NewQueryScript wraps ad hoc SQL text.
func NewQueryScript(text string) Script {
	return Script{Path: QueryScriptName, Text: text, Checksum: Checksum(text)}
}

// LoadScript reads path as UTF-8 text. Failures are *FileAccessError.
func LoadScript(path string) (Script, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return Script{}, &FileAccessError{Path: clean, Err: err}
	}
	if !info.Mode().IsRegular() {
		return Script{}, &FileAccessError{Path: clean, Err: errors.New("not a regular file")}
	}
	// #nosec G304 -- operator supplied script path
	b, err := os.ReadFile(clean)
	if err != nil {
		return Script{}, &FileAccessError{Path: clean, Err: err}
	}
	if !utf8.Valid(b) {
		return Script{}, &FileAccessError{Path: clean, Err: errors.New("file is not valid UTF-8")}
	}
	text := string(b)
	return Script{Path: clean, Text: text, Checksum: Checksum(text)}, nil
}

// Checksum is the hex SHA-256 of the script text.
func Checksum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// CreateLayout is the timestamp prefix of generated script names.
const CreateLayout = "20060102150405"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

const scriptTemplate = `-- %s
-- Created %s
--
-- Statements run in order on one connection. Not wrapped in a transaction.

`

// CreateScript writes an empty, timestamped .sql file into dir and returns
// its path. Existing files are never overwritten.
func CreateScript(dir, name string, now time.Time) (string, error) {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", errors.New("script name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, now.UTC().Format(CreateLayout)+"_"+slug+".sql")
	// #nosec G304 -- path is built from the operator's directory
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	if _, err := fmt.Fprintf(f, scriptTemplate, name, now.UTC().Format(time.RFC3339)); err != nil {
		return "", err
	}
	return path, nil
}

package sqlite

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
	"github.com/loykin/schemarun/internal/util"
)

// BuildDSN renders a modernc.org/sqlite DSN for cfg.SQLitePath. A path that
// is already a "file:" URI or ":memory:" is passed through untouched.
func BuildDSN(cfg connector.Config) (string, error) {
	path := util.TrimWithDefault(cfg.SQLitePath, constants.DefaultSQLitePath)
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", constants.SQLiteBusyTimeoutMS))
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + path + "?" + q.Encode(), nil
}

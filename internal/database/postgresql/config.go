package postgresql

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
	"github.com/loykin/schemarun/internal/util"
)

// BuildDSN renders cfg in the URL form accepted by pgx stdlib.
// Multi-statement scripts need the simple query protocol, so it is selected
// whenever cfg.MultiStatements is set.
func BuildDSN(cfg connector.Config) (string, error) {
	host := util.TrimWithDefault(cfg.Host, constants.DefaultHost)
	port := cfg.Port
	if port == 0 {
		port = constants.DefaultPostgresPort
	}
	if port < 0 || port > 65535 {
		return "", fmt.Errorf("invalid postgres port %d", port)
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + cfg.Name,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else if cfg.User != "" {
		u.User = url.User(cfg.User)
	}

	q := url.Values{}
	q.Set("sslmode", util.TrimWithDefault(cfg.SSLMode, constants.DefaultPostgresSSLMode))
	q.Set("connect_timeout", strconv.Itoa(int(constants.DefaultConnectTimeout.Seconds())))
	if cfg.MultiStatements {
		q.Set("default_query_exec_mode", "simple_protocol")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

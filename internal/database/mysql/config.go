package mysql

import (
	"fmt"
	"net"
	"strconv"

	driver "github.com/go-sql-driver/mysql"
	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database/connector"
	"github.com/loykin/schemarun/internal/util"
)

// BuildDSN renders cfg in go-sql-driver form, e.g.
// root:@tcp(localhost:3306)/property_portforio?charset=utf8mb4&multiStatements=true&parseTime=true
func BuildDSN(cfg connector.Config) (string, error) {
	host := util.TrimWithDefault(cfg.Host, constants.DefaultHost)
	port := cfg.Port
	if port == 0 {
		port = constants.DefaultMySQLPort
	}
	if port < 0 || port > 65535 {
		return "", fmt.Errorf("invalid mysql port %d", port)
	}

	mc := driver.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	mc.MultiStatements = cfg.MultiStatements
	mc.ParseTime = true
	mc.Timeout = constants.DefaultConnectTimeout
	mc.Params = map[string]string{
		"charset": util.TrimWithDefault(cfg.Charset, constants.DefaultMySQLCharset),
	}
	return mc.FormatDSN(), nil
}

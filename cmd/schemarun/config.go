package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/introspect"
	"github.com/loykin/schemarun/pkg/client"
	"gopkg.in/yaml.v3"
)

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
	Color         *bool  `mapstructure:"color" yaml:"color"`                   // enable/disable colorized output
}

type LedgerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Table   string `mapstructure:"table" yaml:"table"`
}

type ServerConfig struct {
	Addr            string `mapstructure:"addr" yaml:"addr"`
	JWTSecret       string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	AllowedIssuer   string `mapstructure:"issuer" yaml:"issuer"`
	AllowedAudience string `mapstructure:"audience" yaml:"audience"`
	ClockSkew       string `mapstructure:"clock_skew" yaml:"clock_skew"`
	TenantPattern   string `mapstructure:"tenant_pattern" yaml:"tenant_pattern"`
}

type ConfigDoc struct {
	SchemaFile    string                 `mapstructure:"schema_file" yaml:"schema_file"`
	MigrateDir    string                 `mapstructure:"migrate_dir" yaml:"migrate_dir"`
	TenantPattern string                 `mapstructure:"tenant_pattern" yaml:"tenant_pattern"`
	Logging       LoggingConfig          `mapstructure:"logging" yaml:"logging"`
	Ledger        LedgerConfig           `mapstructure:"ledger" yaml:"ledger"`
	Server        ServerConfig           `mapstructure:"server" yaml:"server"`
	Client        client.Config          `mapstructure:"client" yaml:"client"`
	EnsureColumns []introspect.TableSpec `mapstructure:"ensure_columns" yaml:"ensure_columns"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the operator; cleaned and validated above
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	return dec.Decode(c)
}

func (c *ConfigDoc) parseLogLevel() (common.LogLevel, error) {
	raw := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	level, ok := common.ParseLevel(raw)
	if !ok {
		return common.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
	return level, nil
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging() error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}

	var logger *common.Logger
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))

	useColor := false
	if c.Logging.Color != nil {
		useColor = *c.Logging.Color
	} else if format == "color" || format == "colour" {
		useColor = true
	}

	switch format {
	case "json":
		logger = common.NewJSONLogger(level)
	case "color", "colour":
		logger = common.NewColorLogger(level)
	case "text", "":
		if useColor {
			logger = common.NewColorLogger(level)
		} else {
			logger = common.NewLogger(level)
		}
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	common.EnableMasking(maskingEnabled)
	common.SetDefaultLogger(logger)

	logger.Debug("logging configured",
		"level", level.String(),
		"format", format,
		"color", useColor,
		"mask_sensitive", maskingEnabled)
	return nil
}

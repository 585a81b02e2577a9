package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/homehub/internal/common"
)

// Configuration keys.
const (
	KeyDatabasePath  = "database.path"
	KeyServerBind    = "server.bind"
	KeyAdminName     = "admin_name"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
	KeyCurrency      = "expenses.currency"
	EnvPrefix        = "HUB"
	DefaultBind      = ":8080"
	DefaultAdminName = "Administrator"
	DefaultDBPath    = "~/.local/share/hub/hub.db"
)

// Config is the resolved application configuration.
type Config struct {
	DatabasePath string
	ServerBind   string
	AdminName    string
	LogLevel     string
	LogFormat    string
	Currency     string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDBPath)
	v.SetDefault(KeyServerBind, DefaultBind)
	v.SetDefault(KeyAdminName, DefaultAdminName)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyCurrency, "₹")
}

// Load reads the configuration out of v, applying defaults and validating it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		DatabasePath: ExpandPath(strings.TrimSpace(v.GetString(KeyDatabasePath))),
		ServerBind:   strings.TrimSpace(v.GetString(KeyServerBind)),
		AdminName:    strings.TrimSpace(v.GetString(KeyAdminName)),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		Currency:     strings.TrimSpace(v.GetString(KeyCurrency)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if c.ServerBind == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyServerBind)
	}
	if c.AdminName == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyAdminName)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

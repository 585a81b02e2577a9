package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/homehub/internal/common"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/hub/hub.db"), cfg.DatabasePath)
	assert.Equal(t, DefaultBind, cfg.ServerBind)
	assert.Equal(t, DefaultAdminName, cfg.AdminName)
	assert.Equal(t, "₹", cfg.Currency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HUB_TEST_DATA", "/srv/hub")

	v := viper.New()
	v.Set(KeyDatabasePath, "$HUB_TEST_DATA/hub.db")
	v.Set(KeyServerBind, "127.0.0.1:9000")
	v.Set(KeyAdminName, "alex")
	v.Set(KeyLogFormat, "json")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/srv/hub/hub.db", cfg.DatabasePath)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerBind)
	assert.Equal(t, "alex", cfg.AdminName)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"blank bind", KeyServerBind, " ", common.ErrMissingConfig},
		{"blank admin", KeyAdminName, "", common.ErrMissingConfig},
		{"bad level", KeyLogLevel, "loud", common.ErrInvalidConfig},
		{"bad format", KeyLogFormat, "xml", common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "db", "hub.db"), ExpandPath("~/db/hub.db"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

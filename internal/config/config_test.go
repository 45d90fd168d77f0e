package config

import (
	"os"
	"testing"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ConfigSuite struct {
	suite.Suite
}

func (s *ConfigSuite) TestDefaults(t provider.T) {
	for _, key := range []string{"HTTP_PORT", "DB_DRIVER", "SYNC_SEND_BUFFER", "REDIS_RELAY_ENABLED"} {
		os.Unsetenv(key)
	}

	cfg := LoadFromEnv()

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 64, cfg.Sync.SendBuffer)
	assert.False(t, cfg.Redis.Enabled)
}

func (s *ConfigSuite) TestLoadFromFile(t provider.T) {
	keys := []string{"HTTP_PORT", "DB_DRIVER", "SYNC_SEND_BUFFER", "REDIS_RELAY_ENABLED", "DB_PASSWORD"}
	for _, key := range keys {
		os.Unsetenv(key)
	}
	defer func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	}()

	f, err := os.CreateTemp("", "lootsplit-*.env")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString("HTTP_PORT=9090\nDB_DRIVER=sqlite3\nSYNC_SEND_BUFFER=8\nREDIS_RELAY_ENABLED=true\nDB_PASSWORD=secret\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg := Load(f.Name())

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 8, cfg.Sync.SendBuffer)
	assert.True(t, cfg.Redis.Enabled)
	assert.NotContains(t, cfg.String(), "secret")
}

func TestConfigSuite(t *testing.T) {
	suite.RunSuite(t, new(ConfigSuite))
}

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := load(viper.New(), home)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".farmsurvey"), cfg.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".farmsurvey", "surveys.db"), cfg.DataPath)
	assert.Equal(t, filepath.Join(home, ".farmsurvey", "token"), cfg.TokenPath)
	assert.Equal(t, time.Minute, cfg.SyncInterval)
	assert.Equal(t, 30*time.Second, cfg.SyncTimeout)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("SERVER_ADDRESS", "survey.example.vu")
	v.Set("ENABLE_TLS", true)
	v.Set("CONFIG_DIR", "/var/lib/farmsurvey")
	v.Set("SYNC_INTERVAL_SECONDS", 15)

	cfg, err := load(v, "/home/field")
	require.NoError(t, err)

	assert.Equal(t, "https://survey.example.vu", cfg.BaseURL())
	assert.Equal(t, "/var/lib/farmsurvey/surveys.db", cfg.DataPath)
	assert.Equal(t, 15*time.Second, cfg.SyncInterval)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("SYNC_TIMEOUT_SECONDS", 0)

	_, err := load(v, t.TempDir())
	assert.Error(t, err)
}

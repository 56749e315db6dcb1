package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := load(v)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.Server.RunAddress)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "migrations", cfg.DB.Migrations)
	assert.Equal(t, 500, cfg.Sync.MaxBatchSize)
	assert.Equal(t, 2.0, cfg.Sync.RateLimit)
	assert.Equal(t, 5, cfg.Sync.RateBurst)
	assert.Equal(t, time.Minute, cfg.Sync.StatsTTL)
	assert.Equal(t, "farmsurvey/sync", cfg.MQTT.Topic)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Empty(t, cfg.Telemetry.SentryDSN)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("DATABASE_URI", "postgres://survey:secret@db:5432/farms")
	t.Setenv("SYNC_MAX_BATCH", "50")
	t.Setenv("STATS_CACHE_TTL", "30s")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := load(v)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "postgres://survey:secret@db:5432/farms", cfg.DB.DatabaseURI)
	assert.Equal(t, 50, cfg.Sync.MaxBatchSize)
	assert.Equal(t, 30*time.Second, cfg.Sync.StatsTTL)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
}

package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env       string
	DB        DB
	Server    Server
	Logger    Logger
	Sync      Sync
	Telemetry Telemetry
	MQTT      MQTT
}

type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type Server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Sync struct {
	MaxBatchSize int           `env:"SYNC_MAX_BATCH"`
	RateLimit    float64       `env:"SYNC_RATE_LIMIT"`
	RateBurst    int           `env:"SYNC_RATE_BURST"`
	StatsTTL     time.Duration `env:"STATS_CACHE_TTL"`
}

type Telemetry struct {
	SentryDSN    string `env:"SENTRY_DSN"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Release      string `env:"RELEASE"`
}

type MQTT struct {
	Broker   string `env:"MQTT_BROKER"`
	Topic    string `env:"MQTT_TOPIC"`
	ClientID string `env:"MQTT_CLIENT_ID"`
	Username string `env:"MQTT_USERNAME"`
	Password string `env:"MQTT_PASSWORD"`
}

// MustLoad читает .env (если есть) и переменные окружения
func MustLoad() *Config {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Fatalf("load %s: %v", envPath, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return load(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":8080")
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", "15s")
	v.SetDefault("allowed_origins", "localhost:*")
	v.SetDefault("sync_max_batch", 500)
	v.SetDefault("sync_rate_limit", 2.0)
	v.SetDefault("sync_rate_burst", 5)
	v.SetDefault("stats_cache_ttl", "1m")
	v.SetDefault("mqtt_topic", "farmsurvey/sync")
	v.SetDefault("mqtt_client_id", "farmsurvey-server")
	v.SetDefault("release", "farmsurvey@dev")
}

func load(v *viper.Viper) *Config {
	return &Config{
		Env: v.GetString("app_env"),
		DB: DB{
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: Server{
			RunAddress:      v.GetString("run_address"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
			AllowedOrigins:  v.GetStringSlice("allowed_origins"),
		},
		Logger: Logger{LogLevel: v.GetString("log_level")},
		Sync: Sync{
			MaxBatchSize: v.GetInt("sync_max_batch"),
			RateLimit:    v.GetFloat64("sync_rate_limit"),
			RateBurst:    v.GetInt("sync_rate_burst"),
			StatsTTL:     v.GetDuration("stats_cache_ttl"),
		},
		Telemetry: Telemetry{
			SentryDSN:    v.GetString("sentry_dsn"),
			OTLPEndpoint: v.GetString("otel_exporter_otlp_endpoint"),
			Release:      v.GetString("release"),
		},
		MQTT: MQTT{
			Broker:   v.GetString("mqtt_broker"),
			Topic:    v.GetString("mqtt_topic"),
			ClientID: v.GetString("mqtt_client_id"),
			Username: v.GetString("mqtt_username"),
			Password: v.GetString("mqtt_password"),
		},
	}
}

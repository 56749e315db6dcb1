package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultEnv           = "local"
	defaultConfigDir     = ".farmsurvey"
)

type Config struct {
	Env           string
	ServerAddress string
	ConfigDir     string
	TokenPath     string
	DataPath      string
	LogFile       string
	SyncInterval  time.Duration
	SyncTimeout   time.Duration
	EnableTLS     bool
}

// MustLoad загружает конфигурацию клиента из .env, окружения и файла,
// уже прочитанного в viper командой
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	cfg, err := load(viper.GetViper(), homeDir)
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0o700); err != nil {
		fmt.Printf("Ошибка создания директории конфигурации: %v\n", err)
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("SYNC_INTERVAL_SECONDS", 60)
	v.SetDefault("SYNC_TIMEOUT_SECONDS", 30)
	v.SetDefault("ENABLE_TLS", false)
}

func load(v *viper.Viper, homeDir string) (*Config, error) {
	setDefaults(v)

	configDir := v.GetString("CONFIG_DIR")
	if !filepath.IsAbs(configDir) {
		configDir = filepath.Join(homeDir, configDir)
	}

	dataPath := v.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, "surveys.db")
	}
	logFile := v.GetString("LOG_FILE")
	if logFile == "" {
		logFile = filepath.Join(configDir, "client.log")
	}

	cfg := &Config{
		Env:           v.GetString("APP_ENV"),
		ServerAddress: v.GetString("SERVER_ADDRESS"),
		ConfigDir:     configDir,
		TokenPath:     filepath.Join(configDir, "token"),
		DataPath:      dataPath,
		LogFile:       logFile,
		SyncInterval:  time.Duration(v.GetInt("SYNC_INTERVAL_SECONDS")) * time.Second,
		SyncTimeout:   time.Duration(v.GetInt("SYNC_TIMEOUT_SECONDS")) * time.Second,
		EnableTLS:     v.GetBool("ENABLE_TLS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds должен быть больше нуля")
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("sync_timeout_seconds должен быть больше нуля")
	}
	return nil
}

// BaseURL адрес сервера со схемой
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

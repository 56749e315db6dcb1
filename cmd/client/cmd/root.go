package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"farmsurvey/cmd/client/cmd/types"
	"farmsurvey/internal/app/client"
	"farmsurvey/internal/app/client/config"
	"farmsurvey/internal/utils/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

var (
	cfgFile    string
	debug      bool
	jsonOutput bool
	serverURL  string

	app       *client.App
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "farmsurvey",
	Short: "FarmSurvey - офлайн-клиент для сбора анкет фермерских хозяйств",
	Long: `FarmSurvey сохраняет анкеты на устройстве без подключения к сети
и отправляет их на сервер, когда связь появляется.

Каждая анкета остается в локальной очереди, пока сервер не подтвердит прием.
Повторная отправка безопасна: сервер не создает дубликатов.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	if err := readConfigFile(); err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	cfg := config.MustLoad()
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	var log *slog.Logger
	if debug {
		log = logger.New(cfg.Env)
	} else {
		log, logCloser = logger.NewFile(cfg.Env, cfg.LogFile)
	}

	var err error
	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), types.ClientAppKey, app))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	var errs []error
	if app != nil {
		errs = append(errs, app.Close())
	}
	if logCloser != nil {
		errs = append(errs, logCloser.Close())
	}
	return errors.Join(errs...)
}

func readConfigFile() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		viper.AddConfigPath(filepath.Join(home, ".farmsurvey"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "писать журнал в консоль")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера FarmSurvey (host:port)")
}

package logger

import (
	"io"
	"os"

	"farmsurvey/internal/app/server/config"

	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New выбирает обработчик по окружению: цветной текст локально, JSON в dev и prod
func New(env string) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return setupPrettySlog()
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// NewFile пишет JSON-лог в файл с ротацией; используется клиентом,
// чтобы не смешивать журнал с выводом команд
func NewFile(env, path string) (*slog.Logger, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	level := slog.LevelInfo
	if env != config.EnvProd {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: level})), rotator
}

func setupPrettySlog() *slog.Logger {
	h := newPrettyHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h)
}

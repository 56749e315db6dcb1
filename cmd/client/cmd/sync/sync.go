package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmsurvey/cmd/client/cmd/types"
	"farmsurvey/internal/app/client"
	"farmsurvey/internal/domain/survey"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	syncStatus bool
	watch      bool
	verbose    bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Отправить очередь на сервер",
	Long: `Отправляет все неотправленные анкеты одним пакетом.

Если сервер недоступен, очередь не меняется и попытку можно повторить.
Повторная отправка не создает дубликатов.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if syncStatus {
			return showSyncStatus(cmd, app)
		}
		if watch {
			return watchSync(cmd.Context(), app)
		}
		return runSync(cmd, app)
	},
}

func runSync(cmd *cobra.Command, app *client.App) error {
	result, err := app.Sync(cmd.Context())
	if err != nil {
		if errors.Is(err, client.ErrConnectivity) {
			fmt.Println("⚠️  Сервер недоступен, анкеты остаются в очереди")
		}
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	if types.JSONOutput(cmd) {
		return types.PrintJSON(result)
	}
	printResult(result)
	return nil
}

func printResult(result *client.SyncResult) {
	if result.Submitted == 0 {
		fmt.Println("Очередь пуста, отправлять нечего")
		return
	}

	fmt.Println(color.GreenString("✅ Синхронизация завершена за %v", result.Duration.Round(time.Millisecond)))
	fmt.Printf("Отправлено:        %d\n", result.Submitted)
	fmt.Printf("Принято сервером:  %d\n", result.Synced)
	if result.Conflicts > 0 {
		fmt.Printf("Конфликтов:        %s\n", color.YellowString("%d", result.Conflicts))
	}
	if result.Failed > 0 {
		fmt.Printf("С ошибками:        %s\n", color.RedString("%d", result.Failed))
	}

	for _, item := range result.Items {
		if !verbose && item.Outcome != survey.OutcomeFailed {
			continue
		}
		line := fmt.Sprintf("  • %s: %s", item.ClientID, item.Outcome)
		if item.Error != "" {
			line += " (" + item.Error + ")"
		}
		fmt.Println(line)
	}
}

func watchSync(ctx context.Context, app *client.App) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Автосинхронизация запущена, Ctrl+C для остановки")
	app.StartAutoSync(ctx, func(res *client.SyncResult, err error) {
		stamp := time.Now().Format("15:04:05")
		switch {
		case err != nil:
			fmt.Printf("[%s] %s\n", stamp, color.YellowString("не удалось: %v", err))
		case res.Submitted > 0:
			fmt.Printf("[%s] отправлено %d, конфликтов %d, ошибок %d\n", stamp, res.Submitted, res.Conflicts, res.Failed)
		}
	})

	<-ctx.Done()
	app.StopAutoSync()
	fmt.Println("Автосинхронизация остановлена")
	return nil
}

func showSyncStatus(cmd *cobra.Command, app *client.App) error {
	st, err := app.SyncStatus(cmd.Context())
	if err != nil {
		return err
	}

	if types.JSONOutput(cmd) {
		return types.PrintJSON(st)
	}

	fmt.Println("=== Статус синхронизации ===")
	fmt.Printf("Устройство:          %s\n", st.DeviceID)
	fmt.Printf("Автор:               %s\n", st.Actor)
	fmt.Printf("В очереди:           %d\n", st.Pending)
	if !st.LastAttempt.IsZero() {
		fmt.Printf("Последняя попытка:   %s\n", st.LastAttempt.Local().Format("2006-01-02 15:04:05"))
	}
	if !st.LastSuccess.IsZero() {
		fmt.Printf("Последний успех:     %s\n", st.LastSuccess.Local().Format("2006-01-02 15:04:05"))
	}
	if st.LastError != "" {
		fmt.Printf("Последняя ошибка:    %s\n", color.RedString(st.LastError))
	}

	fmt.Printf("\n🌐 Соединение с сервером: ")
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := app.CheckConnection(ctx); err != nil {
		fmt.Printf("❌ %v\n", err)
	} else {
		fmt.Printf("✅ OK\n")
	}

	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус очереди")
	SyncCmd.Flags().BoolVarP(&watch, "watch", "w", false, "синхронизировать периодически до остановки")
	SyncCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "показать исход каждой анкеты")
}

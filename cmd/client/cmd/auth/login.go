package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"farmsurvey/cmd/client/cmd/types"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var syncAfterLogin bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в систему",
	Long: `Аутентификация на сервере FarmSurvey.

Токен сохраняется локально; логин записывается как автор следующих синхронизаций.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Вход в систему ===")
		fmt.Println()

		fmt.Print("Логин: ")
		var login string
		_, _ = fmt.Scanln(&login)

		fmt.Print("Пароль: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("ошибка чтения пароля: %w", err)
		}
		fmt.Println()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Login(ctx, login, string(password)); err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}
		fmt.Println("✅ Вход выполнен успешно!")

		if !syncAfterLogin {
			return nil
		}

		fmt.Println("Синхронизация данных...")
		result, err := app.Sync(ctx)
		if err != nil {
			fmt.Printf("⚠️  Синхронизация не удалась: %v\n", err)
			fmt.Println("Анкеты остаются в очереди, можно продолжать работу офлайн")
			return nil
		}
		fmt.Printf("✓ Отправлено анкет: %d\n", result.Submitted)
		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVarP(&syncAfterLogin, "sync", "s", true, "сразу отправить очередь")
}

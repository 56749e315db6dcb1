package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd - родительская команда для всех операций с учетной записью счетчика
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление учетной записью",
	Long: `Регистрация, вход и выход.

Без входа анкеты отправляются от имени anonymous.`,
}

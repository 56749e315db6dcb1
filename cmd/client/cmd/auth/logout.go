package auth

import (
	"fmt"

	"farmsurvey/cmd/client/cmd/types"

	"github.com/spf13/cobra"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if err := app.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Выход выполнен. Анкеты будут отправляться от имени anonymous.")
		return nil
	},
}

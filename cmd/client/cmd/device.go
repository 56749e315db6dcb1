package cmd

import (
	"fmt"

	"farmsurvey/cmd/client/cmd/types"

	"github.com/spf13/cobra"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Показать идентификатор устройства",
	Long: `Идентификатор создается при первом запуске и хранится в локальной базе.
Вместе с идентификатором анкеты он однозначно определяет запись на сервере.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		id, err := app.DeviceID(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка чтения идентификатора устройства: %w", err)
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(map[string]string{"device_id": id})
		}
		fmt.Println(id)
		return nil
	},
}

package survey

import (
	"fmt"
	"os"

	"farmsurvey/cmd/client/cmd/types"
	"farmsurvey/internal/domain/survey"

	"github.com/spf13/cobra"
)

var addFlags surveyFlags

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить анкету",
	Long: `Сохраняет новую анкету в локальную очередь.

Пример:
  farmsurvey survey add --farmer "Maria Kalo" --island Efate --village Mele \
    --lat -17.73 --lng 168.32 --farm-size 2.5 --crops taro,kava --pigs 3`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		s := &survey.Survey{}
		if err := addFlags.apply(cmd, s); err != nil {
			return err
		}

		rec, err := app.AddSurvey(cmd.Context(), s)
		if err != nil {
			return fmt.Errorf("анкета не сохранена: %w", err)
		}

		for _, path := range addFlags.photos {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("ошибка чтения фотографии %s: %w", path, err)
			}
			if err := app.AttachPhoto(cmd.Context(), rec.ClientID, data, addFlags.photoType, ""); err != nil {
				return fmt.Errorf("ошибка добавления фотографии %s: %w", path, err)
			}
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(rec)
		}
		fmt.Printf("✅ Анкета сохранена: %s\n", rec.ClientID)
		fmt.Println("Она будет отправлена при следующей синхронизации.")
		return nil
	},
}

func init() {
	addFlags.register(AddCmd)
	_ = AddCmd.MarkFlagRequired("farmer")
}

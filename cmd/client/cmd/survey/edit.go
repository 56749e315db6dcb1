package survey

import (
	"fmt"
	"os"

	"farmsurvey/cmd/client/cmd/types"
	"farmsurvey/internal/domain/survey"

	"github.com/spf13/cobra"
)

var editFlags surveyFlags

var EditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Изменить анкету",
	Long: `Меняет переданные поля анкеты и снова ставит ее в очередь.

Метка времени правки всегда позже предыдущей, поэтому на сервере
новая версия заменит старую.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if err := editFlags.check(cmd); err != nil {
			return err
		}

		rec, err := app.EditSurvey(cmd.Context(), args[0], func(s *survey.Survey) error {
			return editFlags.apply(cmd, s)
		})
		if err != nil {
			return fmt.Errorf("анкета не изменена: %w", err)
		}

		for _, path := range editFlags.photos {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("ошибка чтения фотографии %s: %w", path, err)
			}
			if err := app.AttachPhoto(cmd.Context(), rec.ClientID, data, editFlags.photoType, ""); err != nil {
				return fmt.Errorf("ошибка добавления фотографии %s: %w", path, err)
			}
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(rec)
		}
		fmt.Printf("✅ Анкета %s обновлена\n", rec.ClientID)
		return nil
	},
}

func init() {
	editFlags.register(EditCmd)
}

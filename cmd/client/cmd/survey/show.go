package survey

import (
	"fmt"
	"strings"

	"farmsurvey/cmd/client/cmd/types"
	"farmsurvey/internal/app/client"

	"github.com/spf13/cobra"
)

var ShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Показать анкету",
	Long:  `Выводит анкету по идентификатору или его первым символам.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		rec, err := app.GetSurvey(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(rec)
		}
		printSurvey(rec)
		return nil
	},
}

func printSurvey(rec *client.LocalSurvey) {
	status := "в очереди"
	if rec.Synced {
		status = "отправлена"
	}

	fmt.Printf("=== %s ===\n", rec.FarmerName)
	fmt.Printf("ID:          %s\n", rec.ClientID)
	fmt.Printf("Устройство:  %s\n", rec.DeviceID)
	fmt.Printf("Статус:      %s\n", status)
	fmt.Printf("Изменена:    %s\n", rec.ClientTimestamp.Local().Format("2006-01-02 15:04:05"))

	line := func(label, v string) {
		if v != "" {
			fmt.Printf("%-12s %s\n", label+":", v)
		}
	}
	line("Остров", rec.Island)
	line("Деревня", rec.Village)
	line("Телефон", rec.Phone)
	if rec.HouseholdSize != nil {
		fmt.Printf("Семья:       %d\n", *rec.HouseholdSize)
	}
	if rec.HasPosition() {
		fmt.Printf("Координаты:  %.5f, %.5f\n", *rec.Latitude, *rec.Longitude)
	}
	if rec.FarmSize != nil {
		fmt.Printf("Площадь:     %.2f га\n", *rec.FarmSize)
	}
	line("Культуры", strings.Join(rec.Crops, ", "))
	if l := rec.Livestock; l.Total() > 0 {
		fmt.Printf("Скот:        коровы %d, свиньи %d, птица %d, козы %d\n", l.Cattle, l.Pigs, l.Poultry, l.Goats)
	}
	if rec.PestIssues != "" {
		fmt.Printf("Вредители:   %s (%s)\n", rec.PestIssues, rec.PestSeverity)
	}
	line("Описание", rec.PestDescription)
	line("Обработка", rec.TreatmentUsed)
	if rec.HarvestDate != nil {
		fmt.Printf("Урожай:      %s\n", rec.HarvestDate.Format(dateLayout))
	}
	line("Заметки", rec.Notes)
	if len(rec.Photos) > 0 {
		fmt.Printf("Фотографии:  %d\n", len(rec.Photos))
	}
}

package survey

import (
	"fmt"
	"os"
	"text/tabwriter"

	"farmsurvey/cmd/client/cmd/types"
	"farmsurvey/internal/app/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	pendingOnly bool
	listLimit   int
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список анкет на устройстве",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		records, err := app.ListSurveys(cmd.Context(), client.ListFilter{PendingOnly: pendingOnly, Limit: listLimit})
		if err != nil {
			return fmt.Errorf("ошибка получения списка анкет: %w", err)
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(records)
		}
		return printTable(records)
	},
}

func printTable(records []client.LocalSurvey) error {
	if len(records) == 0 {
		fmt.Println("Анкеты не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tФермер\tОстров\tДеревня\tСтатус\tИзменена\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t---\t\n")

	for _, rec := range records {
		status := color.YellowString("в очереди")
		if rec.Synced {
			status = color.GreenString("отправлена")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			shortID(rec.ClientID),
			truncate(rec.FarmerName, 30),
			rec.Island,
			rec.Village,
			status,
			rec.ClientTimestamp.Local().Format("2006-01-02 15:04"),
		)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nВсего анкет: %d\n", len(records))
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}

func init() {
	ListCmd.Flags().BoolVarP(&pendingOnly, "pending", "p", false, "только неотправленные")
	ListCmd.Flags().IntVar(&listLimit, "limit", 50, "ограничение количества анкет")
}

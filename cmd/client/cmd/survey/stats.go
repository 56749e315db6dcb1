package survey

import (
	"fmt"

	"farmsurvey/cmd/client/cmd/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Сводка по анкетам на устройстве",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		st, err := app.LocalStats(cmd.Context())
		if err != nil {
			return err
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(st)
		}

		fmt.Println("📊 Анкеты на устройстве")
		fmt.Printf("  Всего:              %d\n", st.Total)
		pending := color.GreenString("%d", st.Pending)
		if st.Pending > 0 {
			pending = color.YellowString("%d", st.Pending)
		}
		fmt.Printf("  Ожидают отправки:   %s\n", pending)
		fmt.Printf("  Общая площадь:      %.1f га\n", st.TotalArea)
		if st.TopCrop != "" {
			fmt.Printf("  Частая культура:    %s\n", st.TopCrop)
		}
		return nil
	},
}

package survey

import (
	"fmt"

	"farmsurvey/cmd/client/cmd/types"

	"github.com/spf13/cobra"
)

var forceDelete bool

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить анкету с устройства",
	Long: `Удаляет анкету и ее фотографии из локальной базы.
Запись на сервере не затрагивается.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		rec, err := app.GetSurvey(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !rec.Synced && !forceDelete {
			return fmt.Errorf("анкета %s еще не отправлена; используйте --force, чтобы удалить ее", rec.ClientID)
		}

		if err := app.DeleteSurvey(cmd.Context(), rec.ClientID); err != nil {
			return err
		}
		fmt.Printf("Анкета %s (%s) удалена\n", rec.ClientID, rec.FarmerName)
		return nil
	},
}

func init() {
	DeleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "удалить даже неотправленную анкету")
}

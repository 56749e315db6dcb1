package types

import (
	"encoding/json"
	"fmt"
	"os"

	"farmsurvey/internal/app/client"

	"github.com/spf13/cobra"
)

type contextKey string

// ClientAppKey ключ, под которым корневая команда кладет *client.App в контекст
const ClientAppKey contextKey = "app"

// App достает приложение из контекста команды
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// JSONOutput true, если передан глобальный флаг --json
func JSONOutput(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}

func PrintJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

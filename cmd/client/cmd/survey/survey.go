package survey

import (
	"github.com/spf13/cobra"
)

// SurveyCmd - родительская команда для работы с локальными анкетами
var SurveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Управление анкетами",
	Long: `Создание, просмотр, правка и удаление анкет в локальной очереди.

Новые и измененные анкеты отправляются на сервер командой sync.`,
}

package cmd

import (
	"farmsurvey/cmd/client/cmd/auth"
	"farmsurvey/cmd/client/cmd/survey"
	"farmsurvey/cmd/client/cmd/sync"
)

func init() {
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	rootCmd.AddCommand(survey.SurveyCmd)
	survey.SurveyCmd.AddCommand(survey.AddCmd)
	survey.SurveyCmd.AddCommand(survey.ListCmd)
	survey.SurveyCmd.AddCommand(survey.ShowCmd)
	survey.SurveyCmd.AddCommand(survey.EditCmd)
	survey.SurveyCmd.AddCommand(survey.DeleteCmd)
	survey.SurveyCmd.AddCommand(survey.StatsCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(deviceCmd)
}

package main

import "farmsurvey/cmd/client/cmd"

func main() {
	cmd.Execute()
}

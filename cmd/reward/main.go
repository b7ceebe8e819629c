package main

import (
	"os"

	"github.com/spf13/cobra"

	"medals_reward/cmd/reward/commands"
)

var rootCmd = &cobra.Command{
	Use:   "MedalsReward",
	Short: "MedalsReward is the service that distributes MEDALS staking and curation rewards",
}

func addCommands() {
	rootCmd.AddCommand(commands.StartCmd())
	rootCmd.AddCommand(commands.RunWeekCmd())
}

func main() {
	addCommands()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

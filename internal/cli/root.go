// Package cli implements the LifeQuest command-line interface using Cobra.
// Every command opens the local daemon state directly; none needs a running server.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lifequest",
	Short: "LifeQuest: a role-playing layer for your health habits",
	Long: `LifeQuest turns meals, steps and journal entries into HP, mana,
experience, streaks, quests and achievements.

Run 'lifequest serve' to start the local API for the app.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

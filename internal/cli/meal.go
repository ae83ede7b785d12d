package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifequest/lifequest/internal/daemon"
)

func init() {
	mealCmd.Flags().IntVar(&mealHP, "hp", 0, "HP impact of the meal (negative for junk food)")
	mealCmd.Flags().StringVar(&mealAdvice, "advice", "", "Coach advice to store with the meal")
	rootCmd.AddCommand(mealCmd)
}

var (
	mealHP     int
	mealAdvice string
)

var mealCmd = &cobra.Command{
	Use:   "meal <description>",
	Short: "Log a meal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMeal,
}

func runMeal(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("meal description is empty")
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	entry := d.Engine.LogMeal(text, mealHP, mealAdvice)
	s := d.Engine.State()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged %q (%+d HP). HP %d, mana %d, streak %d.\n",
		entry.Text, entry.HPImpact, s.HP, s.Mana, s.Streak)
	reportUnlocks(out, d)
	return nil
}

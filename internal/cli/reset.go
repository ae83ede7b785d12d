package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifequest/lifequest/internal/daemon"
)

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress but keep the profile",
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return fmt.Errorf("reset erases all progress; pass --yes to confirm")
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	d.Engine.ResetProgress()
	fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
	return nil
}

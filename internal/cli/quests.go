package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifequest/lifequest/internal/daemon"
)

func init() {
	questsCmd.AddCommand(questsCompleteCmd)
	rootCmd.AddCommand(questsCmd)
}

var questsCmd = &cobra.Command{
	Use:     "quests",
	Aliases: []string{"q"},
	Short:   "Show today's quests, drawing them if needed",
	RunE:    runQuests,
}

var questsCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a quest complete and collect its reward",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestsComplete,
}

func runQuests(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	quests := d.Engine.GenerateDailyQuests()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUEST\tPROGRESS\tREWARD\tDONE")
	for _, q := range quests {
		done := ""
		if q.Completed {
			done = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d (%.0f%%)\t%d XP, %d coins\t%s\n",
			q.ID, q.Title, q.Progress, q.Target, q.ProgressPct(), q.RewardXP, q.RewardCoins, done)
	}
	return w.Flush()
}

func runQuestsComplete(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	if !d.Engine.CompleteQuest(args[0]) {
		return fmt.Errorf("quest %q not found or already complete", args[0])
	}
	fmt.Fprintf(out, "Quest %s complete.\n", args[0])
	reportUnlocks(out, d)
	return nil
}

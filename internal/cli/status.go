package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifequest/lifequest/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, vitals, streak and balances",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	tokens := d.Engine.AITokens()
	s := d.Engine.State()
	level, pct, nextXP := d.Engine.LevelProgress()

	name := s.Profile.Name
	if name == "" {
		name = "Adventurer"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", name, s.Profile.Tier)
	fmt.Fprintf(out, "Level %d  %s  %d / %d XP\n\n", level, renderBar(pct), s.XP, nextXP)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "HP\t%s\n", renderBar(float64(s.HP)))
	fmt.Fprintf(w, "MANA\t%s\n", renderBar(float64(s.Mana)))
	fmt.Fprintf(w, "STREAK\t%d days (best %d)\n", s.Streak, s.LongestStreak)
	fmt.Fprintf(w, "COINS\t%d\n", s.Coins)
	fmt.Fprintf(w, "AI TOKENS\t%d / %d (refill in %s)\n", tokens, s.MaxAITokens, formatWait(d.Engine.TimeUntilNextRefill()))
	fmt.Fprintf(w, "ACHIEVEMENTS\t%d\n", len(s.UnlockedAchievements))

	saved, err := d.DB.SnapshotUpdatedAt(d.Config.Engine.Profile)
	if err != nil {
		return fmt.Errorf("read snapshot time: %w", err)
	}
	if saved.IsZero() {
		fmt.Fprintln(w, "LAST SAVED\tnever")
	} else {
		fmt.Fprintf(w, "LAST SAVED\t%s\n", saved.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

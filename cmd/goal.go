package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkuiv/ticktally/internal/timecalc"
)

var (
	goalHours   int
	goalMinutes int
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Show or set the active profile's daily goal",
	Long: `goal prints the active profile's daily goal. With --hours/--minutes it
sets a new goal, records it for today, and persists it on the profile.`,
	Args: cobra.NoArgs,
	RunE: runGoal,
}

func init() {
	goalCmd.Flags().IntVar(&goalHours, "hours", 0, "goal hours")
	goalCmd.Flags().IntVar(&goalMinutes, "minutes", 0, "goal minutes")
}

func runGoal(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if cmd.Flags().Changed("hours") || cmd.Flags().Changed("minutes") {
		eng.SetGoal(goalHours*3600 + goalMinutes*60)
	}
	fmt.Printf("Daily goal for %q: %s\n",
		eng.ActiveProfile(), timecalc.FormatDuration(eng.GoalSeconds()))
	return nil
}

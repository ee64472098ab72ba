package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkuiv/ticktally/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's progress for the active profile",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Printf("Profile:    %s\n", eng.ActiveProfile())
	fmt.Printf("Today:      %s\n", timecalc.FormatDuration(eng.TotalSecondsToday()))
	fmt.Printf("Daily goal: %s (%s)\n",
		timecalc.FormatDuration(eng.GoalSeconds()), eng.PercentOfGoalToday())
	fmt.Printf("Goal left:  %s\n", timecalc.FormatDuration(eng.GoalSecondsLeft()))
	return nil
}

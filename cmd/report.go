package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkuiv/ticktally/internal/timecalc"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show week, year and streak totals for the active profile",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	longest, current := eng.Streaks()

	yearSeconds := eng.YearTotal()
	fmt.Printf("Profile:        %s\n", eng.ActiveProfile())
	fmt.Printf("This week:      %s\n", timecalc.FormatDuration(eng.WeekTotal()))
	fmt.Printf("This year:      %s (%.1f days)\n",
		timecalc.FormatDuration(yearSeconds), float64(yearSeconds)/86400)
	fmt.Printf("Avg per week:   %s\n", timecalc.FormatDuration(eng.YearAvgPerWeek()))
	fmt.Printf("Longest streak: %d days\n", longest)
	fmt.Printf("Current streak: %d days\n", current)
	return nil
}

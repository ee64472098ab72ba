package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rkuiv/ticktally/internal/aggregate"
	"github.com/rkuiv/ticktally/internal/timecalc"
)

var logDays int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List recorded days with totals and goal progress",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVar(&logDays, "days", 14, "number of most recent days to show (0 for all)")
}

func runLog(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	days := make(map[string]bool)
	for _, entry := range eng.Entries() {
		days[entry.Date] = true
	}
	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if logDays > 0 && len(keys) > logDays {
		keys = keys[len(keys)-logDays:]
	}

	if len(keys) == 0 {
		fmt.Printf("No entries for %q yet\n", eng.ActiveProfile())
		return nil
	}
	for _, key := range keys {
		total := eng.TotalSecondsForDay(key)
		goal := eng.GoalSecondsForDate(key)
		fmt.Printf("%s  %-10s %6s of %s\n",
			key,
			timecalc.FormatDuration(total),
			aggregate.PercentOfGoal(total, goal),
			timecalc.FormatDuration(goal))
	}
	return nil
}

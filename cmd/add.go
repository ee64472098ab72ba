package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addDate    string
	addStart   string
	addHours   int
	addMinutes int
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a block of time to the log by hand",
	Long: `add appends a manual entry to the active profile's log, against today
or against --date. The duration must be positive; the start time is "HH:mm"
or "HH:mm:ss".`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "date to log against, yyyy-MM-dd (default today)")
	addCmd.Flags().StringVar(&addStart, "start", "", "start time, e.g. 08:00 (required)")
	addCmd.Flags().IntVar(&addHours, "hours", 0, "hours to add")
	addCmd.Flags().IntVar(&addMinutes, "minutes", 0, "minutes to add")
	_ = addCmd.MarkFlagRequired("start")
}

func runAdd(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.AddManualTime(addDate, addStart, addHours*3600+addMinutes*60); err != nil {
		return err
	}
	fmt.Printf("Added %dh %dm to %q (%s today)\n",
		addHours, addMinutes, eng.ActiveProfile(), eng.PercentOfGoalToday())
	return nil
}

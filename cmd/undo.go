package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkuiv/ticktally/internal/timecalc"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Remove the most recently added manual entry",
	Args:  cobra.NoArgs,
	RunE:  runUndo,
}

func runUndo(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.UndoLastAddedTime(); err != nil {
		return err
	}
	fmt.Printf("Removed last added entry (%s today)\n",
		timecalc.FormatDuration(eng.TotalSecondsToday()))
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rkuiv/ticktally/internal/engine"
	"github.com/rkuiv/ticktally/internal/timecalc"
)

var (
	runHours   int
	runMinutes int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a stopwatch, or a countdown with --hours/--minutes",
	Long: `run drives the engine with a 1 Hz tick until interrupted (Ctrl-C).
Without flags it runs the stopwatch; with --hours/--minutes it counts down
and stops when the time is up. Crossing midnight splits the session so no
stored entry ever straddles two days.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runHours, "hours", 0, "countdown hours")
	runCmd.Flags().IntVar(&runMinutes, "minutes", 0, "countdown minutes")
}

func runRun(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	countdown := runHours > 0 || runMinutes > 0
	if countdown {
		eng.SetRemaining(runHours*3600 + runMinutes*60)
		if err := eng.StartCountdown(); err != nil {
			return err
		}
		fmt.Printf("Counting down %s on %q\n",
			timecalc.FormatDurationHHMMSS(eng.Remaining()), eng.ActiveProfile())
	} else {
		eng.StartClock()
		fmt.Printf("Clocking on %q\n", eng.ActiveProfile())
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			eng.Tick()
			printRunLine(eng, countdown)
			if countdown && eng.Mode() == engine.ModeIdle {
				fmt.Println("\nTime's up!")
				return nil
			}
		case <-stop:
			eng.PauseCountdown()
			eng.StopClock()
			fmt.Printf("\nStopped. Total today: %s\n",
				timecalc.FormatDurationHHMMSS(eng.TotalSecondsToday()))
			return nil
		}
	}
}

func printRunLine(eng *engine.Engine, countdown bool) {
	display := eng.ClockDisplaySeconds()
	if countdown {
		display = eng.Remaining()
	}
	fmt.Printf("\r%s  today %s  goal left %s ",
		timecalc.FormatDurationHHMMSS(display),
		timecalc.FormatDurationHHMMSS(eng.TotalSecondsToday()),
		timecalc.FormatDurationHHMMSS(eng.GoalSecondsLeft()))
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rkuiv/ticktally/internal/clock"
	"github.com/rkuiv/ticktally/internal/engine"
	"github.com/rkuiv/ticktally/internal/settings"
)

var (
	flagDataDir string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ticktally",
	Short: "ticktally is a countdown and stopwatch time tracker",
	Long: `ticktally tracks focused time against daily goals across profiles.
Sessions are stored as per-profile CSV logs in the data directory.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.ticktally)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(profileCmd)
}

func dataDir() (string, error) {
	if flagDataDir != "" {
		return flagDataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ticktally"), nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// openEngine wires the settings repository, clock, and logger into a ready
// engine. The caller must Close it to release the data-directory lock.
func openEngine() (*engine.Engine, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	repo, err := settings.NewViperRepo(filepath.Join(dir, "settings.yaml"))
	if err != nil {
		return nil, err
	}
	return engine.New(dir, repo, clock.RealClock{}, newLogger())
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion sets the application version (called from main).
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "screencap",
	Short: "Screen, camera and microphone recorder for macOS",
	Long: `screencap captures the screen, an optional webcam overlay and an
optional microphone track, synchronizes them, and muxes the result into a
single H.264/AAC MP4.`,
	Version: version,
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(settingsCmd)
}

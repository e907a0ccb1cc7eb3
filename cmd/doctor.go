package cmd

import (
	"fmt"
	"os/exec"

	"github.com/brightloop/screencap/internal/locator"
	"github.com/spf13/cobra"
)

// doctorCmd checks for the external binaries the recorder depends on,
// adapted from the teacher's internal/deps dependency-check pattern.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the external encoder and device resolver are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok := true

		if path, err := locator.FindEncoder(); err != nil {
			fmt.Printf("encoder:         NOT FOUND (%v)\n", err)
			ok = false
		} else {
			fmt.Printf("encoder:         %s\n", path)
		}

		if path, err := exec.LookPath("device-resolver"); err != nil {
			fmt.Println("device-resolver: NOT FOUND on PATH")
			ok = false
		} else {
			fmt.Printf("device-resolver: %s\n", path)
		}

		if !ok {
			return fmt.Errorf("one or more required dependencies are missing")
		}
		return nil
	},
}

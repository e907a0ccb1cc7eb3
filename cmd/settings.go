package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/brightloop/screencap/internal/settingsstore"
	"github.com/brightloop/screencap/internal/shortcut"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or change the stored application settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current settings as JSON (spec §6 get_settings)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsstore.Load()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var (
	settingsMicEnabled        bool
	settingsCameraEnabled     bool
	settingsImmersiveShortcut string
	settingsSaveLocation      string
)

var settingsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update settings (spec §6 update_settings)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsstore.Load()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("mic-enabled") {
			s.MicEnabled = settingsMicEnabled
		}
		if cmd.Flags().Changed("camera-enabled") {
			s.CameraEnabled = settingsCameraEnabled
		}
		if cmd.Flags().Changed("immersive-shortcut") {
			if _, err := shortcut.Parse(settingsImmersiveShortcut); err != nil {
				return err
			}
			s.ImmersiveShortcut = settingsImmersiveShortcut
		}
		if cmd.Flags().Changed("save-location") {
			loc := settingsSaveLocation
			s.SaveLocation = &loc
		}

		return settingsstore.Save(s)
	},
}

var settingsShortcutCmd = &cobra.Command{
	Use:   "shortcut <expression>",
	Short: "Parse and store a new immersive-mode shortcut (spec §6 update_immersive_shortcut)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := shortcut.Parse(args[0])
		if err != nil {
			return err
		}

		s, err := settingsstore.Load()
		if err != nil {
			return err
		}
		s.ImmersiveShortcut = parsed.String()
		return settingsstore.Save(s)
	},
}

func init() {
	settingsUpdateCmd.Flags().BoolVar(&settingsMicEnabled, "mic-enabled", true, "enable the microphone track")
	settingsUpdateCmd.Flags().BoolVar(&settingsCameraEnabled, "camera-enabled", true, "enable the camera overlay")
	settingsUpdateCmd.Flags().StringVar(&settingsImmersiveShortcut, "immersive-shortcut", "", "immersive-mode shortcut expression, e.g. Option+I")
	settingsUpdateCmd.Flags().StringVar(&settingsSaveLocation, "save-location", "", "directory recordings are saved to")

	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsUpdateCmd)
	settingsCmd.AddCommand(settingsShortcutCmd)
}

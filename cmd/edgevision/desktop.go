package main

import (
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/spf13/cobra"

	"edgevision-studio/internal/config"
	"edgevision-studio/internal/gui"
)

func newDesktopCmd(c *cli) *cobra.Command {
	var device int

	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Open the desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("camera-device") {
				c.cfg.Camera.DeviceID = device
			}
			if err := c.validate(); err != nil {
				return err
			}

			c.logger.WithField("version", config.AppVersion).Info("Starting " + config.AppName)

			myApp := app.NewWithID(config.AppID)
			myApp.SetIcon(theme.DocumentIcon())
			myApp.Settings().SetTheme(theme.DefaultTheme())

			mainApp := gui.NewApplication(myApp, c.cfg, c.logger, c.newHandler(), c.newLoader())
			mainApp.ShowAndRun()

			c.logger.Info("Application shutting down gracefully")
			return nil
		},
	}

	cmd.Flags().IntVar(&device, "camera-device", config.Default().Camera.DeviceID, "capture device index")
	return cmd
}

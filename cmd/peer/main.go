package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbharu/EduSphere-sub001/internal/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edusphere-peer",
	Short: "Headless EduSphere live class participant",
	Long: `edusphere-peer joins an EduSphere live class as a headless WebRTC
participant: it authenticates against the realtime gateway, joins the
video room, and negotiates a direct media link with every other
participant. Useful for recording bots, load testing, and development
without a browser.`,
}

func main() {
	logging.Init("peer")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

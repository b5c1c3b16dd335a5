// Package cli implements the renderctl command line for operating a
// render worker: enqueue jobs, run batches, inspect status, trigger
// render passes.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	quietMode  bool
	serverURL  string

	printer   *Printer
	apiClient *Client
)

var rootCmd = &cobra.Command{
	Use:   "renderctl",
	Short: "renderctl - operate a render worker from the terminal",
	Long: `renderctl talks to a render worker's HTTP API.

Queue render jobs, trigger processing passes, and inspect job state:

  renderctl enqueue auto_color --item 42    # Queue a color-grade job
  renderctl run                             # Process the next queued job
  renderctl status <job-id>                 # Inspect a job
  renderctl batch jobs.yaml                 # Queue a batch from YAML`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		printer = NewPrinter(
			WithJSON(jsonOutput),
			WithQuiet(quietMode),
		)
		apiClient = NewClient(serverURL)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultURL := os.Getenv("RENDER_SERVER_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON (for scripting)")
	rootCmd.PersistentFlags().BoolVar(&quietMode, "quiet", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultURL, "Worker API base URL")

	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runCmd)
}

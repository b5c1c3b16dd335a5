package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runLimit int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Trigger a render pass on the worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := apiClient.Render(cmd.Context(), runLimit)
		if err != nil {
			printer.Error("render trigger failed: %v", err)
			return err
		}

		if printer.IsJSON() {
			printer.JSON(outcome)
			if !outcome.OK && outcome.Message == "" {
				return fmt.Errorf("render pass failed")
			}
			return nil
		}

		switch {
		case outcome.Message == "no jobs":
			printer.Info("queue is empty")
		case outcome.Result != nil:
			if outcome.Result.Status == "completed" {
				printer.Success("job %s completed", outcome.Job)
				if outcome.Result.OutputURL != "" {
					printer.Printf("  %s\n", outcome.Result.OutputURL)
				}
			} else {
				printer.Error("job %s failed: %s", outcome.Job, outcome.Result.Error)
				return fmt.Errorf("render pass failed")
			}
		case len(outcome.Results) > 0:
			for id, res := range outcome.Results {
				if res.Status == "completed" {
					printer.Success("%s (%s) completed", id, res.JobType)
				} else {
					printer.Error("%s (%s) failed: %s", id, res.JobType, res.Error)
				}
			}
		case !outcome.OK:
			printer.Error("render pass failed: %s", outcome.Error)
			return fmt.Errorf("render pass failed")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runLimit, "limit", 1, "Maximum jobs to process in this pass")
}

package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showLogs bool

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show a job's current state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		j, err := apiClient.GetJob(cmd.Context(), id)
		if err != nil {
			printer.Error("lookup failed: %v", err)
			return err
		}

		if printer.IsJSON() {
			printer.JSON(j)
			return nil
		}

		printer.Printf("Job:      %s\n", j.ID)
		printer.Printf("Type:     %s\n", j.JobType)
		printer.Printf("Status:   %s\n", colorStatus(j.Status))
		printer.Printf("Progress: %d%%\n", j.Progress)
		if j.OutputURL != nil && *j.OutputURL != "" {
			printer.Printf("Output:   %s\n", *j.OutputURL)
		}
		printer.Printf("Created:  %s\n", j.CreatedAt)
		printer.Printf("Updated:  %s\n", j.UpdatedAt)
		if showLogs && j.Logs != nil && *j.Logs != "" {
			printer.Printf("\nLogs:\n%s\n", *j.Logs)
		}
		return nil
	},
}

func colorStatus(status string) string {
	switch status {
	case "completed":
		return color.GreenString(status)
	case "failed":
		return color.RedString(status)
	case "running":
		return color.CyanString(status)
	default:
		return color.YellowString(status)
	}
}

func init() {
	statusCmd.Flags().BoolVar(&showLogs, "logs", false, "Include the job's processing logs")
}

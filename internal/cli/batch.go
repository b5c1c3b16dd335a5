package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type batchFile struct {
	Jobs []batchJob `yaml:"jobs"`
}

type batchJob struct {
	JobType string         `yaml:"job_type"`
	Params  map[string]any `yaml:"params"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <file.yaml>",
	Short: "Queue a batch of jobs from a YAML file",
	Long: `Queue every job listed in a YAML file. Expected layout:

  jobs:
    - job_type: auto_color
      params:
        itemId: "42"
    - job_type: object_remove
      params:
        src_url: https://example.com/frame.png
        mask_url: https://example.com/mask.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading batch file: %w", err)
		}

		var batch batchFile
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return fmt.Errorf("parsing batch file: %w", err)
		}
		if len(batch.Jobs) == 0 {
			return fmt.Errorf("batch file lists no jobs")
		}

		bar := NewProgress(len(batch.Jobs), "Queueing jobs", quietMode || jsonOutput)

		type queued struct {
			ID      string `json:"id,omitempty"`
			JobType string `json:"job_type"`
			Error   string `json:"error,omitempty"`
		}
		results := make([]queued, 0, len(batch.Jobs))
		failures := 0

		for _, bj := range batch.Jobs {
			j, err := apiClient.Enqueue(cmd.Context(), bj.JobType, bj.Params)
			if err != nil {
				failures++
				results = append(results, queued{JobType: bj.JobType, Error: err.Error()})
			} else {
				results = append(results, queued{ID: j.ID.String(), JobType: bj.JobType})
			}
			bar.Increment()
		}
		bar.Finish()

		if printer.IsJSON() {
			printer.JSON(results)
		} else {
			printer.Success("queued %d of %d jobs", len(batch.Jobs)-failures, len(batch.Jobs))
			for _, r := range results {
				if r.Error != "" {
					printer.Error("%s: %s", r.JobType, r.Error)
				}
			}
		}

		if failures > 0 {
			return fmt.Errorf("%d of %d jobs failed to queue", failures, len(batch.Jobs))
		}
		return nil
	},
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	enqueueItemID   string
	enqueueDuration int
	enqueueSrcURL   string
	enqueueMaskURL  string
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <job-type>",
	Short: "Queue a render job",
	Long: `Queue a single render job of the given type.

Job types and their parameters:
  export         --item <id>
  auto_color     --item <id>
  auto_cut       --item <id> [--duration <seconds>]
  subtitles      --item <id>
  object_remove  --src <url> --mask <url>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobType := args[0]
		params, err := buildParams(jobType)
		if err != nil {
			return err
		}

		j, err := apiClient.Enqueue(cmd.Context(), jobType, params)
		if err != nil {
			printer.Error("enqueue failed: %v", err)
			return err
		}

		if printer.IsJSON() {
			printer.JSON(j)
			return nil
		}
		printer.Success("queued %s job %s", j.JobType, j.ID)
		return nil
	},
}

func buildParams(jobType string) (map[string]any, error) {
	switch jobType {
	case "export", "auto_color", "subtitles":
		if enqueueItemID == "" {
			return nil, fmt.Errorf("%s requires --item", jobType)
		}
		return map[string]any{"itemId": enqueueItemID}, nil
	case "auto_cut":
		if enqueueItemID == "" {
			return nil, fmt.Errorf("auto_cut requires --item")
		}
		params := map[string]any{"itemId": enqueueItemID}
		if enqueueDuration > 0 {
			params["targetDurationSec"] = enqueueDuration
		}
		return params, nil
	case "object_remove":
		if enqueueSrcURL == "" || enqueueMaskURL == "" {
			return nil, fmt.Errorf("object_remove requires --src and --mask")
		}
		return map[string]any{
			"src_url":  enqueueSrcURL,
			"mask_url": enqueueMaskURL,
		}, nil
	default:
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}
}

func init() {
	enqueueCmd.Flags().StringVar(&enqueueItemID, "item", "", "Media item id")
	enqueueCmd.Flags().IntVar(&enqueueDuration, "duration", 0, "Target duration in seconds (auto_cut)")
	enqueueCmd.Flags().StringVar(&enqueueSrcURL, "src", "", "Source image URL (object_remove)")
	enqueueCmd.Flags().StringVar(&enqueueMaskURL, "mask", "", "Mask image URL (object_remove)")
}

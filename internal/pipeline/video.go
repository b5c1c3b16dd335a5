package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/atlastrail/render/internal/encoder"
	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/logger"
)

// VideoTransform handles export, auto_color and auto_cut: one source
// download, one encoder run, one streamable MP4 out.
type VideoTransform struct {
	runner encoder.Runner
}

var _ Pipeline = (*VideoTransform)(nil)

func NewVideoTransform(runner encoder.Runner) *VideoTransform {
	return &VideoTransform{runner: runner}
}

func (p *VideoTransform) Name() string {
	return "video_transform"
}

func (p *VideoTransform) Run(ctx context.Context, in *Input) (*Artifact, error) {
	log := logger.FromContext(ctx)

	params, ok := in.Params.(*job.VideoParams)
	if !ok {
		return nil, fmt.Errorf("%w: video transform needs video params", ErrValidation)
	}

	inputPath, err := in.WS.Download(ctx, in.SourceURL, "input.mp4")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientIO, err)
	}

	opts := encoder.TransformOptions{}
	switch in.Job.JobType {
	case job.TypeAutoColor:
		opts.AutoColor = true
	case job.TypeAutoCut:
		opts.TrimSeconds = params.TargetDuration()
	}

	outputPath := in.WS.Path("output.mp4")
	args := encoder.TransformArgs(inputPath, outputPath, opts)

	result, err := p.runner.Run(ctx, args...)
	if err != nil {
		if errors.Is(err, encoder.ErrExitStatus) {
			return nil, fmt.Errorf("%w: %v\n%s", ErrProcessing, err, result.Log())
		}
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read encoder output: %v", ErrProcessing, err)
	}

	log.Debug("video transform finished", "job_type", in.Job.JobType, "output_bytes", len(data))

	return &Artifact{
		Data:        data,
		ContentType: "video/mp4",
		Filename:    "export.mp4",
		Kind:        KindVideo,
		Log:         result.Log(),
	}, nil
}

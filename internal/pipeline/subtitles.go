package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlastrail/render/internal/encoder"
	"github.com/atlastrail/render/internal/logger"
	"github.com/atlastrail/render/internal/transcribe"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// SubtitleExtraction downloads the source video, extracts a mono 16 kHz
// PCM track and sends it to the transcription service.
type SubtitleExtraction struct {
	runner      encoder.Runner
	transcriber Transcriber
}

var _ Pipeline = (*SubtitleExtraction)(nil)

func NewSubtitleExtraction(runner encoder.Runner, transcriber Transcriber) *SubtitleExtraction {
	return &SubtitleExtraction{runner: runner, transcriber: transcriber}
}

func (p *SubtitleExtraction) Name() string {
	return "subtitle_extraction"
}

func (p *SubtitleExtraction) Run(ctx context.Context, in *Input) (*Artifact, error) {
	log := logger.FromContext(ctx)

	inputPath, err := in.WS.Download(ctx, in.SourceURL, "input.mp4")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientIO, err)
	}

	audioPath := in.WS.Path("audio.wav")
	result, err := p.runner.Run(ctx, encoder.ExtractAudioArgs(inputPath, audioPath)...)
	if err != nil {
		if errors.Is(err, encoder.ErrExitStatus) {
			return nil, fmt.Errorf("%w: %v\n%s", ErrProcessing, err, result.Log())
		}
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	text, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		var apiErr *transcribe.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %v", ErrTransientIO, apiErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientIO, err)
	}

	log.Debug("subtitles extracted", "chars", len(text))

	return &Artifact{
		Data:        []byte(text),
		ContentType: "text/plain",
		Filename:    "subtitles.srt",
		Kind:        KindSubtitles,
		Log:         result.Log(),
	}, nil
}

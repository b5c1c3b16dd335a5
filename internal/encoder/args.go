package encoder

import "strconv"

// AutoColorFilter is the fixed grade applied by auto_color jobs.
const AutoColorFilter = "eq=contrast=1.05:brightness=0.03:saturation=1.12"

type TransformOptions struct {
	AutoColor bool
	// TrimSeconds caps the output duration; zero means no trim.
	TrimSeconds int
}

// TransformArgs builds the argument list for a video transform run. All
// variants produce a streamable fast-start MP4.
func TransformArgs(inputPath, outputPath string, opts TransformOptions) []string {
	args := []string{"-i", inputPath}

	if opts.AutoColor {
		args = append(args, "-vf", AutoColorFilter)
	}
	if opts.TrimSeconds > 0 {
		args = append(args, "-t", strconv.Itoa(opts.TrimSeconds))
	}

	args = append(args,
		"-movflags", "+faststart",
		"-y",
		outputPath,
	)
	return args
}

// ExtractAudioArgs builds the argument list for extracting the mono
// 16 kHz PCM track the transcription service expects.
func ExtractAudioArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outputPath,
	}
}

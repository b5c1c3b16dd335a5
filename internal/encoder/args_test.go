package encoder

import (
	"slices"
	"testing"
)

func TestTransformArgsExport(t *testing.T) {
	args := TransformArgs("/tmp/in.mp4", "/tmp/out.mp4", TransformOptions{})

	want := []string{"-i", "/tmp/in.mp4", "-movflags", "+faststart", "-y", "/tmp/out.mp4"}
	if !slices.Equal(args, want) {
		t.Errorf("TransformArgs() = %v, want %v", args, want)
	}
}

func TestTransformArgsAutoColor(t *testing.T) {
	args := TransformArgs("/tmp/in.mp4", "/tmp/out.mp4", TransformOptions{AutoColor: true})

	idx := slices.Index(args, "-vf")
	if idx < 0 || idx+1 >= len(args) {
		t.Fatalf("TransformArgs() missing -vf: %v", args)
	}
	if args[idx+1] != "eq=contrast=1.05:brightness=0.03:saturation=1.12" {
		t.Errorf("filter = %q, want the fixed auto_color grade", args[idx+1])
	}
}

func TestTransformArgsAutoCut(t *testing.T) {
	args := TransformArgs("/tmp/in.mp4", "/tmp/out.mp4", TransformOptions{TrimSeconds: 30})

	idx := slices.Index(args, "-t")
	if idx < 0 || args[idx+1] != "30" {
		t.Errorf("TransformArgs() should trim with -t 30, got %v", args)
	}
	if !slices.Contains(args, "+faststart") {
		t.Error("TransformArgs() should always apply the fast-start flag")
	}
}

func TestExtractAudioArgs(t *testing.T) {
	args := ExtractAudioArgs("/tmp/in.mp4", "/tmp/audio.wav")

	for _, pair := range [][2]string{
		{"-acodec", "pcm_s16le"},
		{"-ar", "16000"},
		{"-ac", "1"},
	} {
		idx := slices.Index(args, pair[0])
		if idx < 0 || args[idx+1] != pair[1] {
			t.Errorf("ExtractAudioArgs() missing %s %s: %v", pair[0], pair[1], args)
		}
	}
	if !slices.Contains(args, "-vn") {
		t.Error("ExtractAudioArgs() should drop the video stream")
	}
}

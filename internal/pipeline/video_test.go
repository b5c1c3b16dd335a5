package pipeline

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/atlastrail/render/internal/encoder"
	"github.com/atlastrail/render/internal/job"
)

func TestVideoTransformExport(t *testing.T) {
	srv, hits := countingServer(t, []byte("source video"))
	runner := &fakeRunner{output: []byte("encoded mp4")}
	p := NewVideoTransform(runner)

	in := newTestInput(t, job.TypeExport, rawVideoParams("m1", 0), srv.URL, srv.Client())

	art, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if art.ContentType != "video/mp4" {
		t.Errorf("ContentType = %q, want video/mp4", art.ContentType)
	}
	if art.Filename != "export.mp4" {
		t.Errorf("Filename = %q, want export.mp4", art.Filename)
	}
	if string(art.Data) != "encoded mp4" {
		t.Error("artifact should carry the encoder output bytes")
	}
	if hits.Load() != 1 {
		t.Errorf("source downloads = %d, want 1", hits.Load())
	}
	if len(runner.calls) != 1 {
		t.Fatalf("encoder runs = %d, want 1", len(runner.calls))
	}
	if slices.Contains(runner.calls[0], "-vf") {
		t.Error("plain export should not apply a filter chain")
	}
	if !strings.Contains(art.Log, "ffmpeg") {
		t.Error("artifact log should contain the invoked command line")
	}
}

func TestVideoTransformAutoColorFilter(t *testing.T) {
	srv, _ := countingServer(t, []byte("source video"))
	runner := &fakeRunner{output: []byte("graded mp4")}
	p := NewVideoTransform(runner)

	in := newTestInput(t, job.TypeAutoColor, rawVideoParams("m1", 0), srv.URL, srv.Client())

	if _, err := p.Run(context.Background(), in); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	args := runner.calls[0]
	idx := slices.Index(args, "-vf")
	if idx < 0 || args[idx+1] != "eq=contrast=1.05:brightness=0.03:saturation=1.12" {
		t.Errorf("auto_color args = %v, want the fixed eq filter", args)
	}
}

func TestVideoTransformAutoCutDefaultDuration(t *testing.T) {
	srv, _ := countingServer(t, []byte("source video"))
	runner := &fakeRunner{output: []byte("cut mp4")}
	p := NewVideoTransform(runner)

	in := newTestInput(t, job.TypeAutoCut, rawVideoParams("m1", 0), srv.URL, srv.Client())

	if _, err := p.Run(context.Background(), in); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	args := runner.calls[0]
	idx := slices.Index(args, "-t")
	if idx < 0 || args[idx+1] != "30" {
		t.Errorf("auto_cut args = %v, want -t 30 by default", args)
	}
}

func TestVideoTransformEncoderFailure(t *testing.T) {
	srv, _ := countingServer(t, []byte("source video"))
	runner := &fakeRunner{
		failErr: encoder.ErrExitStatus,
		lines:   []string{"Invalid data found when processing input"},
	}
	p := NewVideoTransform(runner)

	in := newTestInput(t, job.TypeExport, rawVideoParams("m1", 0), srv.URL, srv.Client())

	_, err := p.Run(context.Background(), in)
	if !errors.Is(err, ErrProcessing) {
		t.Fatalf("Run() error = %v, want ErrProcessing", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Error("processing error should carry the captured encoder output")
	}
}

func TestVideoTransformDownloadFailure(t *testing.T) {
	runner := &fakeRunner{output: []byte("unused")}
	p := NewVideoTransform(runner)

	srv, _ := countingServer(t, nil)
	in := newTestInput(t, job.TypeExport, rawVideoParams("m1", 0), "http://127.0.0.1:1/nope", srv.Client())

	_, err := p.Run(context.Background(), in)
	if !errors.Is(err, ErrTransientIO) {
		t.Fatalf("Run() error = %v, want ErrTransientIO", err)
	}
	if len(runner.calls) != 0 {
		t.Error("encoder must not run when the download fails")
	}
}

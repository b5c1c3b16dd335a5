package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/atlastrail/render/internal/encoder"
	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/workspace"
	"github.com/google/uuid"
)

// fakeRunner stands in for the encoder subprocess: it records the
// argument list and writes canned bytes to the output path (last arg).
type fakeRunner struct {
	calls   [][]string
	output  []byte
	failErr error
	lines   []string
}

var _ encoder.Runner = (*fakeRunner)(nil)

func (r *fakeRunner) Run(ctx context.Context, args ...string) (*encoder.Result, error) {
	r.calls = append(r.calls, args)
	result := &encoder.Result{
		Cmdline: "ffmpeg " + strings.Join(args, " "),
		Output:  r.lines,
	}
	if r.failErr != nil {
		return result, r.failErr
	}
	outputPath := args[len(args)-1]
	if err := os.WriteFile(outputPath, r.output, 0o644); err != nil {
		return result, err
	}
	return result, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeInpainter struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeInpainter) Inpaint(ctx context.Context, imagePath, maskPath, prompt string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

// countingServer serves fixed bytes and counts requests, so tests can
// assert that validation failures make zero network calls.
func countingServer(t *testing.T, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestInput(t *testing.T, jobType job.Type, rawParams string, sourceURL string, srvClient *http.Client) *Input {
	t.Helper()

	j := &job.RenderJob{
		ID:      uuid.New(),
		JobType: jobType,
		Status:  job.StatusRunning,
		Params:  json.RawMessage(rawParams),
	}

	params, err := job.DecodeParams(jobType, j.Params)
	if err != nil {
		t.Fatalf("DecodeParams() error: %v", err)
	}

	ws, err := workspace.Acquire(t.TempDir(), j.ID.String(), srvClient)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	t.Cleanup(ws.Release)

	return &Input{Job: j, Params: params, SourceURL: sourceURL, WS: ws}
}

func rawVideoParams(itemID string, target int) string {
	if target > 0 {
		return fmt.Sprintf(`{"itemId":%q,"targetDurationSec":%d}`, itemID, target)
	}
	return fmt.Sprintf(`{"itemId":%q}`, itemID)
}

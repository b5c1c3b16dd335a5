// Package workspace manages the ephemeral per-job local storage area.
// A workspace lives for one job attempt and is removed on every exit
// path, success or failure.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/atlastrail/render/internal/logger"
)

var ErrDownloadFailed = errors.New("workspace: download failed")

type Workspace struct {
	jobID string
	dir   string
	httpc *http.Client
}

// Acquire creates the job's working directory under root. Callers must
// Release the workspace when the attempt ends.
func Acquire(root, jobID string, httpc *http.Client) (*Workspace, error) {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	dir := filepath.Join(root, "render", jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &Workspace{jobID: jobID, dir: dir, httpc: httpc}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path for a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Release removes the workspace directory and everything in it.
func (w *Workspace) Release() {
	if err := os.RemoveAll(w.dir); err != nil {
		logger.Default().Warn("failed to remove workspace", "job_id", w.jobID, "dir", w.dir, "error", err)
	}
}

// Download fetches url into the workspace under name and returns the
// local path. Non-2xx responses fail with the status line.
func (w *Workspace) Download(ctx context.Context, url, name string) (string, error) {
	log := logger.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := w.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: GET %s: %s", ErrDownloadFailed, url, resp.Status)
	}

	dest := w.Path(name)
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	written, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	log.Debug("source downloaded", "url", url, "dest", dest, "bytes", written)
	return dest, nil
}

// WriteFile stores bytes under name inside the workspace (intermediate
// artifacts).
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	dest := w.Path(name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return dest, nil
}

package imageedit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeImageFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	img := filepath.Join(dir, "src.png")
	mask := filepath.Join(dir, "mask.png")
	data := pngBytes(t)
	if err := os.WriteFile(img, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mask, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return img, mask
}

func TestInpaint(t *testing.T) {
	result := pngBytes(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, field := range []string{"image", "mask"} {
			if _, _, err := r.FormFile(field); err != nil {
				http.Error(w, "missing "+field, http.StatusBadRequest)
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"b64_json": base64.StdEncoding.EncodeToString(result)},
			},
		})
	}))
	defer srv.Close()

	img, mask := writeImageFixtures(t)
	c := New(Config{BaseURL: srv.URL, APIKey: "k"})

	got, err := c.Inpaint(context.Background(), img, mask, "remove the masked object")
	if err != nil {
		t.Fatalf("Inpaint() error: %v", err)
	}
	if !bytes.Equal(got, result) {
		t.Error("Inpaint() should return the decoded image bytes")
	}
}

func TestInpaintAPIFailure(t *testing.T) {
	const apiBody = `{"error":"mask dimensions mismatch"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(apiBody))
	}))
	defer srv.Close()

	img, mask := writeImageFixtures(t)
	c := New(Config{BaseURL: srv.URL})

	_, err := c.Inpaint(context.Background(), img, mask, "remove")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Inpaint() error = %v, want *APIError", err)
	}
	if apiErr.Body != apiBody {
		t.Errorf("Body = %q, want verbatim API body", apiErr.Body)
	}
}

func TestInpaintEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	img, mask := writeImageFixtures(t)
	c := New(Config{BaseURL: srv.URL})

	if _, err := c.Inpaint(context.Background(), img, mask, "remove"); !errors.Is(err, ErrNoImageData) {
		t.Errorf("Inpaint() error = %v, want ErrNoImageData", err)
	}
}

func TestInpaintMissingSourceFile(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:0"})
	_, mask := writeImageFixtures(t)

	if _, err := c.Inpaint(context.Background(), "/nope.png", mask, "remove"); err == nil {
		t.Error("Inpaint() should fail when the source image is missing")
	}
}

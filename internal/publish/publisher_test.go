package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/atlastrail/render/internal/pipeline"
	"github.com/atlastrail/render/internal/storage"
	"github.com/google/uuid"
)

func TestPublishStoresAtDeterministicKey(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := New(store, DefaultConfig())
	jobID := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

	art := &pipeline.Artifact{
		Data:        []byte("mp4 bytes"),
		ContentType: "video/mp4",
		Filename:    "export.mp4",
		Kind:        pipeline.KindVideo,
	}

	url, err := p.Publish(context.Background(), jobID, art)
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	key := "jobs/7c9e6679-7425-40de-944b-e07fc1f90ae7/export.mp4"
	data, ok := store.GetData(key)
	if !ok {
		t.Fatalf("artifact not stored at %s", key)
	}
	if !bytes.Equal(data, art.Data) {
		t.Error("stored bytes differ from artifact bytes")
	}

	got, err := store.Resolve(url, time.Now())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !bytes.Equal(got, art.Data) {
		t.Error("signed URL should resolve to the exact uploaded bytes")
	}
}

func TestPublishOverwritesPriorAttempt(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := New(store, DefaultConfig())
	jobID := uuid.New()

	first := &pipeline.Artifact{Data: []byte("attempt one"), ContentType: "video/mp4", Filename: "export.mp4", Kind: pipeline.KindVideo}
	second := &pipeline.Artifact{Data: []byte("attempt two"), ContentType: "video/mp4", Filename: "export.mp4", Kind: pipeline.KindVideo}

	if _, err := p.Publish(context.Background(), jobID, first); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Publish(context.Background(), jobID, second); err != nil {
		t.Fatal(err)
	}

	data, _ := store.GetData(Key(jobID, "export.mp4"))
	if !bytes.Equal(data, second.Data) {
		t.Error("second publish should overwrite the first")
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
}

func TestPublishTTLByKind(t *testing.T) {
	store := storage.NewMemoryStorage()
	cfg := Config{OutputTTL: time.Hour, InpaintTTL: 48 * time.Hour}
	p := New(store, cfg)

	video := &pipeline.Artifact{Data: []byte("v"), ContentType: "video/mp4", Filename: "export.mp4", Kind: pipeline.KindVideo}
	inpaint := &pipeline.Artifact{Data: []byte("i"), ContentType: "image/png", Filename: "inpainted.png", Kind: pipeline.KindInpaint}

	videoURL, err := p.Publish(context.Background(), uuid.New(), video)
	if err != nil {
		t.Fatal(err)
	}
	inpaintURL, err := p.Publish(context.Background(), uuid.New(), inpaint)
	if err != nil {
		t.Fatal(err)
	}

	// The video URL dies after its one-hour TTL; the inpaint URL lives on.
	after := time.Now().Add(2 * time.Hour)
	if _, err := store.Resolve(videoURL, after); !errors.Is(err, storage.ErrAccessDenied) {
		t.Errorf("video URL after TTL: error = %v, want ErrAccessDenied", err)
	}
	if _, err := store.Resolve(inpaintURL, after); err != nil {
		t.Errorf("inpaint URL within TTL: unexpected error %v", err)
	}
}

type failingStorage struct {
	storage.Storage
}

func (f *failingStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error {
	return errors.New("connection reset by peer")
}

func TestPublishUploadFailure(t *testing.T) {
	p := New(&failingStorage{Storage: storage.NewMemoryStorage()}, DefaultConfig())

	art := &pipeline.Artifact{Data: []byte("v"), ContentType: "video/mp4", Filename: "export.mp4", Kind: pipeline.KindVideo}
	_, err := p.Publish(context.Background(), uuid.New(), art)
	if !errors.Is(err, pipeline.ErrTransientIO) {
		t.Fatalf("Publish() error = %v, want ErrTransientIO", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Error("error should carry the storage failure detail")
	}
}

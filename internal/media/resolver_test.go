package media

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeGetter struct {
	items map[string]*Item
	err   error
}

func (g *fakeGetter) GetMediaItem(ctx context.Context, id string) (*Item, error) {
	if g.err != nil {
		return nil, g.err
	}
	item, ok := g.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

func TestResolveCandidateOrder(t *testing.T) {
	tests := []struct {
		name string
		item *Item
		want string
	}{
		{
			name: "public_url wins over everything",
			item: &Item{PublicURL: "https://cdn/p", URL: "https://cdn/u", StorageURL: "https://cdn/s", Path: "bucket/x"},
			want: "https://cdn/p",
		},
		{
			name: "url when public_url empty",
			item: &Item{URL: "https://cdn/u", StorageURL: "https://cdn/s"},
			want: "https://cdn/u",
		},
		{
			name: "storage_url third",
			item: &Item{StorageURL: "https://cdn/s", Path: "bucket/x"},
			want: "https://cdn/s",
		},
		{
			name: "path is the last resort",
			item: &Item{Path: "bucket/x"},
			want: "bucket/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&fakeGetter{items: map[string]*Item{"m1": tt.item}})
			got, err := r.Resolve(context.Background(), "m1")
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(&fakeGetter{items: map[string]*Item{}})
	_, err := r.Resolve(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestResolveMissingSource(t *testing.T) {
	r := NewResolver(&fakeGetter{items: map[string]*Item{"m1": {ID: "m1", Title: "untitled"}}})
	_, err := r.Resolve(context.Background(), "m1")
	if !errors.Is(err, ErrMissingSource) {
		t.Errorf("Resolve() error = %v, want ErrMissingSource", err)
	}
}

func TestResolveStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewResolver(&fakeGetter{err: boom})
	_, err := r.Resolve(context.Background(), "m1")
	if !errors.Is(err, boom) {
		t.Errorf("Resolve() error = %v, want wrapped store error", err)
	}
}

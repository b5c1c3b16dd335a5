// Package media resolves a job's referenced media id into one canonical
// source URL, isolating upstream schema drift behind a single type.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlastrail/render/internal/logger"
)

var (
	ErrNotFound      = errors.New("media: item not found")
	ErrMissingSource = errors.New("media: no resolvable source url")
)

// Item is a media record as stored upstream. Older records carry their
// location in one of several legacy fields; only one is usually set.
type Item struct {
	ID         string
	Title      string
	PublicURL  string
	URL        string
	StorageURL string
	Path       string
}

// SourceURL returns the first populated candidate field, in the fixed
// precedence order public_url, url, storage_url, path.
func (it *Item) SourceURL() (string, bool) {
	for _, candidate := range []string{it.PublicURL, it.URL, it.StorageURL, it.Path} {
		if candidate != "" {
			return candidate, true
		}
	}
	return "", false
}

type Getter interface {
	GetMediaItem(ctx context.Context, id string) (*Item, error)
}

type Resolver struct {
	store Getter
}

func NewResolver(store Getter) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up the media record and extracts a fetchable URL.
func (r *Resolver) Resolve(ctx context.Context, itemID string) (string, error) {
	log := logger.FromContext(ctx)

	item, err := r.store.GetMediaItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, itemID)
		}
		return "", fmt.Errorf("lookup media %s: %w", itemID, err)
	}

	url, ok := item.SourceURL()
	if !ok {
		log.Warn("media record has no source url", "item_id", itemID)
		return "", fmt.Errorf("%w: %s", ErrMissingSource, itemID)
	}

	log.Debug("media source resolved", "item_id", itemID)
	return url, nil
}

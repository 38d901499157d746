// Package catalog stores the product asset table: a Redis hash mapping
// product page URLs to image URLs. Hard filtering uses it as a catalog
// membership test; the transport uses it for display.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/shopmate/internal/db"
)

// assetHashKey is the field-per-product hash holding url -> image.
const assetHashKey = "assets"

// store is the consumer interface for asset operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGet(ctx context.Context, key, field string) (string, error)
	Del(ctx context.Context, key string) error
}

// Repo implements the asset catalog collaborator.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates an asset catalog repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// ResolveAsset returns the image URL for a product URL, or ok=false when the
// product is not part of the catalog.
func (r *Repo) ResolveAsset(ctx context.Context, productURL string) (string, bool, error) {
	image, err := r.store.HGet(ctx, r.key(), productURL)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("resolve asset: %w", err)
	}
	return image, true, nil
}

// PutAssets stores url -> image mappings; used by the catalog loader.
func (r *Repo) PutAssets(ctx context.Context, urlToImage map[string]string) error {
	if len(urlToImage) == 0 {
		return nil
	}
	if err := r.store.HSet(ctx, r.key(), urlToImage); err != nil {
		return fmt.Errorf("put assets: %w", err)
	}
	return nil
}

// Reset drops the whole asset table; used by the loader before a re-ingest.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.store.Del(ctx, r.key()); err != nil {
		return fmt.Errorf("reset assets: %w", err)
	}
	return nil
}

func (r *Repo) key() string {
	return r.keyPrefix + assetHashKey
}

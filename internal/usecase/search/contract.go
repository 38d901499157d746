package search

import (
	"context"

	"github.com/kailas-cloud/shopmate/internal/domain/catalog"
)

// Retriever fetches the k nearest catalog entries for a query vector.
type Retriever interface {
	Search(ctx context.Context, vector []float32, k int) ([]catalog.Product, error)
}

// AssetResolver maps a product URL to its display image. A product with no
// asset entry is not part of the active catalog and is dropped from results.
type AssetResolver interface {
	ResolveAsset(ctx context.Context, url string) (image string, ok bool, err error)
}

// Package search implements the semantic retrieval collaborator: KNN search
// over the product index, returning catalog candidates with raw metadata.
package search

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/kailas-cloud/shopmate/internal/db"
	domcat "github.com/kailas-cloud/shopmate/internal/domain/catalog"
)

// Product hash field names shared with the catalog loader.
const (
	FieldURL     = "url"
	FieldName    = "name"
	FieldBrand   = "brand"
	FieldPrice   = "price"
	FieldContent = "__content"
	FieldVector  = "__vector"
)

// IndexName derives the FT index name from the key prefix.
func IndexName(keyPrefix string) string {
	return keyPrefix + "products:idx"
}

// ProductKey derives a stable document key for a product URL.
func ProductKey(keyPrefix, productURL string) string {
	sum := sha1.Sum([]byte(productURL))
	return keyPrefix + "product:" + hex.EncodeToString(sum[:])
}

// Definition builds the FT index schema for the product catalog.
func Definition(keyPrefix string, dimensions int) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     IndexName(keyPrefix),
		Prefixes: []string{keyPrefix + "product:"},
		Fields: []db.IndexField{
			{Name: FieldBrand, Type: db.IndexFieldTag},
			{Name: FieldPrice, Type: db.IndexFieldText},
			{Name: FieldContent, Type: db.IndexFieldText},
			{
				Name:              FieldVector,
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           16,
				VectorEFConstruct: 200,
			},
		},
	}
}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Retriever.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a product search repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Search embeds nothing itself; it takes a ready query vector and returns the
// K nearest products in relevance order.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domcat.Product, error) {
	q := &db.KNNQuery{
		IndexName:    IndexName(r.keyPrefix),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{FieldURL, FieldName, FieldBrand, FieldPrice, FieldContent, "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	products := make([]domcat.Product, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		products = append(products, domcat.Product{
			URL:     entry.Fields[FieldURL],
			Name:    entry.Fields[FieldName],
			Brand:   entry.Fields[FieldBrand],
			Price:   entry.Fields[FieldPrice],
			Content: entry.Fields[FieldContent],
		})
	}
	return products, nil
}

// ingestStore is the consumer interface for catalog loading.
type ingestStore interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Ingester writes product hashes and manages their FT index. Used by the
// catalog loader, not by the serving path.
type Ingester struct {
	store     ingestStore
	keyPrefix string
}

// NewIngester creates a catalog ingest repository.
func NewIngester(s ingestStore, keyPrefix string) *Ingester {
	return &Ingester{store: s, keyPrefix: keyPrefix}
}

// EnsureIndex creates the product index if it does not exist yet.
func (ing *Ingester) EnsureIndex(ctx context.Context, dimensions int) error {
	exists, err := ing.store.IndexExists(ctx, IndexName(ing.keyPrefix))
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}
	if err := ing.store.CreateIndex(ctx, Definition(ing.keyPrefix, dimensions)); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// DropIndex removes the product index; ErrIndexNotFound is not an error here.
func (ing *Ingester) DropIndex(ctx context.Context) error {
	if err := ing.store.DropIndex(ctx, IndexName(ing.keyPrefix)); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// Put writes one batch of products with their embedding vectors.
func (ing *Ingester) Put(ctx context.Context, products []domcat.Product, vectors [][]float32) error {
	if len(products) != len(vectors) {
		return fmt.Errorf("products/vectors length mismatch: %d != %d", len(products), len(vectors))
	}

	items := make([]db.HashSetItem, len(products))
	for i, p := range products {
		items[i] = db.HashSetItem{
			Key: ProductKey(ing.keyPrefix, p.URL),
			Fields: map[string]string{
				FieldURL:     p.URL,
				FieldName:    p.Name,
				FieldBrand:   p.Brand,
				FieldPrice:   p.Price,
				FieldContent: p.Content,
				FieldVector:  db.VectorBytes(vectors[i]),
			},
		}
	}

	if err := ing.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put products: %w", err)
	}
	return nil
}

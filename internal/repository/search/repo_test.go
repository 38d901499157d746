package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopmate/internal/db"
)

type mockStore struct {
	result    *db.SearchResult
	err       error
	lastQuery *db.KNNQuery
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	return m.result, m.err
}

func TestSearchMapsEntries(t *testing.T) {
	store := &mockStore{result: &db.SearchResult{
		Total: 1,
		Entries: []db.SearchEntry{
			{
				Key: "shopmate:product:abc",
				Fields: map[string]string{
					FieldURL:     "https://example.com/p/1",
					FieldName:    "Mini Tote",
					FieldBrand:   "Guess",
					FieldPrice:   "129.95",
					FieldContent: "black leather tote bag",
				},
			},
		},
	}}
	repo := New(store, "shopmate:")

	products, err := repo.Search(context.Background(), []float32{0.1, 0.2}, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}

	p := products[0]
	if p.URL != "https://example.com/p/1" || p.Name != "Mini Tote" || p.Brand != "Guess" {
		t.Errorf("unexpected product mapping: %+v", p)
	}
	if p.Price != "129.95" {
		t.Errorf("price should carry raw metadata, got %q", p.Price)
	}

	if store.lastQuery.IndexName != "shopmate:products:idx" {
		t.Errorf("index name = %q", store.lastQuery.IndexName)
	}
	if store.lastQuery.K != 30 {
		t.Errorf("k = %d, want 30", store.lastQuery.K)
	}
}

func TestSearchPropagatesStoreError(t *testing.T) {
	store := &mockStore{err: errors.New("connection refused")}
	repo := New(store, "shopmate:")

	if _, err := repo.Search(context.Background(), []float32{0.1}, 5); err == nil {
		t.Fatal("expected error")
	}
}

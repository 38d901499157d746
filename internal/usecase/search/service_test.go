package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopmate/internal/domain"
	"github.com/kailas-cloud/shopmate/internal/domain/catalog"
	"github.com/kailas-cloud/shopmate/internal/domain/preference"
)

type mockEmbedder struct {
	vector []float32
	err    error
	gotQry string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.gotQry = text
	return domain.EmbeddingResult{Embedding: m.vector}, m.err
}

type mockRetriever struct {
	products []catalog.Product
	err      error
	gotK     int
}

func (m *mockRetriever) Search(_ context.Context, _ []float32, k int) ([]catalog.Product, error) {
	m.gotK = k
	return m.products, m.err
}

type mockAssets struct {
	images map[string]string
	err    error
}

func (m *mockAssets) ResolveAsset(_ context.Context, url string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	img, ok := m.images[url]
	return img, ok, nil
}

func product(url, name, brand, price, content string) catalog.Product {
	return catalog.Product{URL: url, Name: name, Brand: brand, Price: price, Content: content}
}

func allAssets(products ...catalog.Product) *mockAssets {
	images := make(map[string]string)
	for _, p := range products {
		images[p.URL] = "img/" + p.URL
	}
	return &mockAssets{images: images}
}

func ptr(v float64) *float64 { return &v }

func TestBuildQuery(t *testing.T) {
	rec := &preference.Record{
		Brands:     []string{"Guess"},
		Categories: []string{"tote bag"},
		Colors:     []string{"black"},
		Materials:  []string{"leather"},
	}
	got := BuildQuery("show me bags", rec)
	want := "show me bags leather black tote bag Guess"
	if got != want {
		t.Errorf("BuildQuery = %q, want %q", got, want)
	}

	if got := BuildQuery("hello", &preference.Record{}); got != "hello" {
		t.Errorf("BuildQuery with empty record = %q, want %q", got, "hello")
	}
}

func TestSearchRanksByPriceDescending(t *testing.T) {
	products := []catalog.Product{
		product("a", "Bag A", "Guess", "$50", "black tote bag"),
		product("b", "Bag B", "Guess", "$200", "black tote bag"),
		product("c", "Bag C", "Guess", "$75", "black tote bag"),
	}
	svc := NewService(&mockRetriever{products: products}, &mockEmbedder{vector: []float32{1}},
		allAssets(products...), 6, 5, zap.NewNop())

	results := svc.Search(context.Background(), "bags", &preference.Record{})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantPrices := []float64{200, 75, 50}
	for i, want := range wantPrices {
		if results[i].Price != want {
			t.Errorf("results[%d].Price = %v, want %v", i, results[i].Price, want)
		}
	}
}

func TestSearchPriceBoundsInclusive(t *testing.T) {
	products := []catalog.Product{
		product("a", "Bag A", "Guess", "$150", "tote bag"),
		product("b", "Bag B", "Guess", "$100", "tote bag"),
		product("c", "Bag C", "Guess", "$50", "tote bag"),
	}
	svc := NewService(&mockRetriever{products: products}, &mockEmbedder{vector: []float32{1}},
		allAssets(products...), 6, 5, zap.NewNop())

	rec := &preference.Record{PriceMin: ptr(50), PriceMax: ptr(100)}
	results := svc.Search(context.Background(), "bags", rec)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Price > 100 || r.Price < 50 {
			t.Errorf("price %v outside [50,100]", r.Price)
		}
	}
}

func TestSearchBrandAndColorFilters(t *testing.T) {
	products := []catalog.Product{
		product("a", "City Tote", "Guess", "$80", "black leather tote bag"),
		product("b", "City Tote", "Fossil", "$90", "black leather tote bag"),
		product("c", "Day Pack", "Guess", "$70", "red canvas backpack"),
	}
	svc := NewService(&mockRetriever{products: products}, &mockEmbedder{vector: []float32{1}},
		allAssets(products...), 6, 5, zap.NewNop())

	rec := &preference.Record{Brands: []string{"Guess"}, Colors: []string{"black"}}
	results := svc.Search(context.Background(), "bags", rec)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Product.URL != "a" {
		t.Errorf("got product %q, want %q", results[0].Product.URL, "a")
	}
}

func TestSearchDropsUnparsablePricesAndMissingAssets(t *testing.T) {
	products := []catalog.Product{
		product("a", "Bag A", "Guess", "$80", "tote bag"),
		product("b", "Bag B", "Guess", "call us", "tote bag"),
		product("c", "Bag C", "Guess", "$60", "tote bag"),
	}
	assets := allAssets(products[0], products[1]) // c has no asset entry
	svc := NewService(&mockRetriever{products: products}, &mockEmbedder{vector: []float32{1}},
		assets, 6, 5, zap.NewNop())

	results := svc.Search(context.Background(), "bags", &preference.Record{})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Product.URL != "a" {
		t.Errorf("got product %q, want %q", results[0].Product.URL, "a")
	}
	if results[0].Product.ImageURL != "img/a" {
		t.Errorf("ImageURL = %q, want %q", results[0].Product.ImageURL, "img/a")
	}
}

func TestSearchTruncatesToPageSize(t *testing.T) {
	var products []catalog.Product
	for _, url := range []string{"a", "b", "c", "d"} {
		products = append(products, product(url, "Bag", "Guess", "$10", "tote"))
	}
	retriever := &mockRetriever{products: products}
	svc := NewService(retriever, &mockEmbedder{vector: []float32{1}},
		allAssets(products...), 2, 5, zap.NewNop())

	results := svc.Search(context.Background(), "bags", &preference.Record{})
	if len(results) != 2 {
		t.Errorf("got %d results, want page size 2", len(results))
	}
	if retriever.gotK != 10 {
		t.Errorf("retriever k = %d, want 10", retriever.gotK)
	}
}

func TestSearchDegradesToEmpty(t *testing.T) {
	cases := []struct {
		name string
		svc  *Service
	}{
		{"embedding failure", NewService(&mockRetriever{}, &mockEmbedder{err: errors.New("down")},
			&mockAssets{}, 6, 5, zap.NewNop())},
		{"retrieval failure", NewService(&mockRetriever{err: errors.New("down")},
			&mockEmbedder{vector: []float32{1}}, &mockAssets{}, 6, 5, zap.NewNop())},
		{"unconfigured", NewService(nil, nil, &mockAssets{}, 6, 5, zap.NewNop())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if results := tc.svc.Search(context.Background(), "bags", &preference.Record{}); len(results) != 0 {
				t.Errorf("got %d results, want 0", len(results))
			}
		})
	}
}

func TestRetrieveWrapsSearchUnavailable(t *testing.T) {
	cases := []struct {
		name string
		svc  *Service
	}{
		{
			"no collaborators",
			NewService(nil, nil, &mockAssets{}, 6, 5, zap.NewNop()),
		},
		{
			"embedding failure",
			NewService(&mockRetriever{}, &mockEmbedder{err: errors.New("rate limited")}, &mockAssets{}, 6, 5, zap.NewNop()),
		},
		{
			"retrieval failure",
			NewService(&mockRetriever{err: errors.New("index missing")}, &mockEmbedder{vector: []float32{0.1}}, &mockAssets{}, 6, 5, zap.NewNop()),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.svc.retrieve(context.Background(), "black tote")
			if !errors.Is(err, domain.ErrSearchUnavailable) {
				t.Errorf("err = %v, want ErrSearchUnavailable", err)
			}
		})
	}
}

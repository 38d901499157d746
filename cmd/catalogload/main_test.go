package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/shopmate/internal/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadProducts(t *testing.T) {
	path := writeCSV(t, `url,name,brand,price,content,image_url
u/1,City Tote,Guess,129.95,black leather tote,img/1
u/2,Day Pack,Fossil,89.00,canvas backpack,
,No URL,Guess,10,skipped,
`)

	products, assets, err := readProducts(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("products = %d, want 2", len(products))
	}
	if products[0].Name != "City Tote" || products[1].Brand != "Fossil" {
		t.Errorf("unexpected products: %+v", products)
	}
	if len(assets) != 1 || assets["u/1"] != "img/1" {
		t.Errorf("assets = %v", assets)
	}
}

func TestReadProductsMissingColumn(t *testing.T) {
	path := writeCSV(t, "url,name,brand,price,content\nu/1,City Tote,Guess,129.95,tote\n")

	if _, _, err := readProducts(path); err == nil {
		t.Fatal("expected error for missing image_url column")
	}
}

func TestReadProductsMalformedRowIsAnError(t *testing.T) {
	path := writeCSV(t, `url,name,brand,price,content,image_url
u/1,City Tote,Guess,129.95,black leather tote,img/1
u/2,"unclosed quote,Fossil,89.00,canvas backpack,img/2
u/3,Day Pack,Fossil,89.00,canvas backpack,img/3
`)

	if _, _, err := readProducts(path); err == nil {
		t.Fatal("expected parse error, not a truncated catalog")
	}
}

type batchCapable struct {
	batchCalls int
}

func (e *batchCapable) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

func (e *batchCapable) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.batchCalls++
	return domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}, nil
}

type singleOnly struct {
	calls int
}

func (e *singleOnly) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	e.calls++
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

func TestEmbedTextsPrefersBatchEndpoint(t *testing.T) {
	e := &batchCapable{}
	res, err := embedTexts(context.Background(), e, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.batchCalls != 1 {
		t.Errorf("batch calls = %d, want 1", e.batchCalls)
	}
	if len(res.Embeddings) != 2 {
		t.Errorf("embeddings = %d, want 2", len(res.Embeddings))
	}
}

func TestEmbedTextsFallsBackToPerText(t *testing.T) {
	e := &singleOnly{}
	res, err := embedTexts(context.Background(), e, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.calls != 3 {
		t.Errorf("per-text calls = %d, want 3", e.calls)
	}
	if len(res.Embeddings) != 3 {
		t.Errorf("embeddings = %d, want 3", len(res.Embeddings))
	}
}

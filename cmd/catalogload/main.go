// Catalog ingest pipeline for shopmate. Reads a product CSV, embeds each
// product's text, writes product hashes plus the asset table to Redis and
// creates the FT vector index the assistant searches.
//
// Usage:
//
//	catalogload -file data/products.csv -workers 4 -reset
//
// The CSV must carry a header with url, name, brand, price, content and
// image_url columns. Connection and model settings come from the same YAML
// config (plus .env) the API server uses.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kailas-cloud/shopmate/internal/config"
	dbRedis "github.com/kailas-cloud/shopmate/internal/db/redis"
	"github.com/kailas-cloud/shopmate/internal/domain"
	"github.com/kailas-cloud/shopmate/internal/domain/catalog"
	logpkg "github.com/kailas-cloud/shopmate/internal/logger"
	catalogrepo "github.com/kailas-cloud/shopmate/internal/repository/catalog"
	searchrepo "github.com/kailas-cloud/shopmate/internal/repository/search"
	openaiTransport "github.com/kailas-cloud/shopmate/internal/transport/openai"
)

type loaderConfig struct {
	file      string
	batchSize int
	workers   int
	reset     bool
}

func parseFlags() loaderConfig {
	cfg := loaderConfig{}
	flag.StringVar(&cfg.file, "file", "data/products.csv", "product CSV file")
	flag.IntVar(&cfg.batchSize, "batch-size", 64, "products per embedding batch")
	flag.IntVar(&cfg.workers, "workers", 4, "number of parallel embed+write workers")
	flag.BoolVar(&cfg.reset, "reset", false, "drop the index and asset table before loading")
	flag.Parse()
	return cfg
}

func main() {
	_ = godotenv.Load()
	cfg := parseFlags()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		cancel()
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg loaderConfig) error {
	start := time.Now()

	appCfg, err := config.Load(config.GetEnv())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if appCfg.LLM.APIKey == "" {
		return fmt.Errorf("llm api key is required for ingest")
	}

	logger, err := logpkg.NewLogger(config.GetEnv(), appCfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    appCfg.Redis.Addrs,
		Password: appCfg.Redis.Password,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(appCfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("redis not ready: %w", err)
	}

	products, assets, err := readProducts(cfg.file)
	if err != nil {
		return err
	}
	log.Printf("read %d products from %s", len(products), cfg.file)

	ingester := searchrepo.NewIngester(store, appCfg.Redis.KeyPrefix)
	assetRepo := catalogrepo.New(store, appCfg.Redis.KeyPrefix)

	if cfg.reset {
		if err := ingester.DropIndex(ctx); err != nil {
			return err
		}
		if err := assetRepo.Reset(ctx); err != nil {
			return err
		}
		log.Println("dropped index and asset table")
	}

	if err := ingester.EnsureIndex(ctx, appCfg.LLM.Dimensions); err != nil {
		return err
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     appCfg.LLM.APIKey,
		BaseURL:    appCfg.LLM.BaseURL,
		Model:      appCfg.LLM.EmbeddingModel,
		Dimensions: appCfg.LLM.Dimensions,
		Timeout:    time.Duration(appCfg.LLM.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	loaded, failed := ingest(ctx, cfg, products, embedder, ingester)

	if err := assetRepo.PutAssets(ctx, assets); err != nil {
		return err
	}

	log.Printf("done: %d loaded, %d failed, %d assets, took %s",
		loaded, failed, len(assets), time.Since(start).Round(time.Second))
	if failed > 0 {
		return fmt.Errorf("%d products failed to load", failed)
	}
	return nil
}

// ingest fans product batches out to workers; each worker embeds the batch
// texts in one API call and writes the hashes.
func ingest(
	ctx context.Context,
	cfg loaderConfig,
	products []catalog.Product,
	embedder domain.Embedder,
	ingester *searchrepo.Ingester,
) (loaded, failed int64) {
	batches := make(chan []catalog.Product, cfg.workers*2)
	var wg sync.WaitGroup
	var okCount, failCount atomic.Int64

	for i := 0; i < cfg.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				if err := loadBatch(ctx, batch, embedder, ingester); err != nil {
					log.Printf("batch of %d failed: %v", len(batch), err)
					failCount.Add(int64(len(batch)))
					continue
				}
				okCount.Add(int64(len(batch)))
			}
		}()
	}

	for start := 0; start < len(products); start += cfg.batchSize {
		end := start + cfg.batchSize
		if end > len(products) {
			end = len(products)
		}
		select {
		case batches <- products[start:end]:
		case <-ctx.Done():
			start = len(products)
		}
	}
	close(batches)
	wg.Wait()

	return okCount.Load(), failCount.Load()
}

func loadBatch(
	ctx context.Context,
	batch []catalog.Product,
	embedder domain.Embedder,
	ingester *searchrepo.Ingester,
) error {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = strings.TrimSpace(p.Name + " " + p.Content)
	}

	res, err := embedTexts(ctx, embedder, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	if err := ingester.Put(ctx, batch, res.Embeddings); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// embedTexts uses the provider's batch endpoint when it has one and falls
// back to per-text calls otherwise.
func embedTexts(ctx context.Context, e domain.Embedder, texts []string) (domain.BatchEmbeddingResult, error) {
	if batcher, ok := e.(domain.BatchEmbedder); ok {
		return batcher.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, e, texts)
}

// readProducts parses the CSV into products and the url -> image asset table.
func readProducts(path string) ([]catalog.Product, map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"url", "name", "brand", "price", "content", "image_url"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("csv is missing column %q", required)
		}
	}

	var products []catalog.Product
	assets := make(map[string]string)
	line := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read line %d: %w", line+1, err)
		}
		line++

		get := func(name string) string {
			idx := cols[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		p := catalog.Product{
			URL:     get("url"),
			Name:    get("name"),
			Brand:   get("brand"),
			Price:   get("price"),
			Content: get("content"),
		}
		if p.URL == "" || p.Name == "" {
			log.Printf("line %d: skipping row without url/name", line)
			continue
		}

		products = append(products, p)
		if image := get("image_url"); image != "" {
			assets[p.URL] = image
		}
	}

	if len(products) == 0 {
		return nil, nil, fmt.Errorf("no products found in %s", path)
	}
	return products, assets, nil
}

package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopmate/internal/domain"
	"github.com/kailas-cloud/shopmate/internal/domain/catalog"
	"github.com/kailas-cloud/shopmate/internal/domain/preference"
	"github.com/kailas-cloud/shopmate/internal/metrics"
)

// Result is a catalog product that passed every active constraint, with its
// price already parsed for ranking and display.
type Result struct {
	Product catalog.Product
	Price   float64
}

// Service retrieves candidates by vector similarity, then applies the active
// preferences as hard filters and ranks what survives by price, highest first.
type Service struct {
	retriever Retriever
	embedder  domain.Embedder
	assets    AssetResolver
	pageSize  int
	overfetch int
	logger    *zap.Logger
}

func NewService(retriever Retriever, embedder domain.Embedder, assets AssetResolver, pageSize, overfetch int, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		embedder:  embedder,
		assets:    assets,
		pageSize:  pageSize,
		overfetch: overfetch,
		logger:    logger,
	}
}

// BuildQuery folds the active soft signals into the retrieval query so the
// vector search is steered toward them even though only some of them are
// enforced as filters afterwards.
func BuildQuery(utterance string, rec *preference.Record) string {
	parts := []string{utterance}
	for _, group := range [][]string{rec.Materials, rec.Colors, rec.Categories, rec.Brands} {
		if len(group) > 0 {
			parts = append(parts, strings.Join(group, " "))
		}
	}
	return strings.Join(parts, " ")
}

// Search runs the full retrieval pipeline for one turn. Collaborator
// failures degrade to an empty result set; the turn itself never fails.
func (s *Service) Search(ctx context.Context, utterance string, rec *preference.Record) []Result {
	candidates, err := s.retrieve(ctx, BuildQuery(utterance, rec))
	if err != nil {
		s.logger.Warn("search degraded, returning no products", zap.Error(err))
		return nil
	}

	results := s.filter(ctx, candidates, rec)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Price > results[j].Price
	})
	if len(results) > s.pageSize {
		results = results[:s.pageSize]
	}

	metrics.SearchResultsReturned.Observe(float64(len(results)))
	return results
}

// retrieve embeds the query and fetches candidates. Every failure mode wraps
// domain.ErrSearchUnavailable so callers see one sentinel.
func (s *Service) retrieve(ctx context.Context, query string) ([]catalog.Product, error) {
	if s.embedder == nil || s.retriever == nil {
		return nil, fmt.Errorf("retrieval collaborators not configured: %w", domain.ErrSearchUnavailable)
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w: %w", err, domain.ErrSearchUnavailable)
	}

	candidates, err := s.retriever.Search(ctx, emb.Embedding, s.pageSize*s.overfetch)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w: %w", err, domain.ErrSearchUnavailable)
	}
	return candidates, nil
}

func (s *Service) filter(ctx context.Context, candidates []catalog.Product, rec *preference.Record) []Result {
	results := make([]Result, 0, len(candidates))
	for _, p := range candidates {
		image, ok, err := s.assets.ResolveAsset(ctx, p.URL)
		if err != nil {
			s.logger.Warn("asset lookup failed, dropping candidate",
				zap.String("url", p.URL), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		price, err := catalog.ParsePrice(p.Price)
		if err != nil {
			continue
		}
		if !matches(p, price, rec) {
			continue
		}

		p.ImageURL = image
		results = append(results, Result{Product: p, Price: price})
	}
	return results
}

// matches applies the hard constraints: price bounds inclusive, and brand,
// color and category as case-insensitive substring checks. Materials and
// features are query-side signals only and never filter here.
func matches(p catalog.Product, price float64, rec *preference.Record) bool {
	if rec.PriceMin != nil && price < *rec.PriceMin {
		return false
	}
	if rec.PriceMax != nil && price > *rec.PriceMax {
		return false
	}

	if len(rec.Brands) > 0 {
		brand := strings.ToLower(p.Brand)
		if !containsAny(brand, rec.Brands) {
			return false
		}
	}

	text := p.SearchText()
	if len(rec.Colors) > 0 && !containsAny(text, rec.Colors) {
		return false
	}
	if len(rec.Categories) > 0 && !containsAny(text, rec.Categories) {
		return false
	}
	return true
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Package preference runs the extract-normalize-merge cycle that keeps a
// session's preference record in sync with what the user says.
package preference

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopmate/internal/domain/preference"
)

// Extractor asks the language model to read preference claims out of one
// utterance, given the current state as context.
type Extractor interface {
	ExtractPreferences(ctx context.Context, userInput, previousPrefs string) (preference.Delta, error)
}

// Service applies one utterance to a preference record. Extraction output is
// untrusted, so everything passes through vocabulary normalization before the
// merge.
type Service struct {
	extractor Extractor
	logger    *zap.Logger
}

func NewService(extractor Extractor, logger *zap.Logger) *Service {
	return &Service{extractor: extractor, logger: logger}
}

// Update extracts preferences from the utterance and merges them into rec.
// It reports whether the record changed. Any extraction failure leaves the
// record untouched.
func (s *Service) Update(ctx context.Context, rec *preference.Record, utterance string) bool {
	if s.extractor == nil {
		return false
	}

	previous, err := json.Marshal(rec.Snapshot())
	if err != nil {
		s.logger.Error("failed to encode current preferences", zap.Error(err))
		return false
	}

	delta, err := s.extractor.ExtractPreferences(ctx, utterance, string(previous))
	if err != nil {
		s.logger.Warn("preference extraction failed, keeping current state", zap.Error(err))
		return false
	}

	normalized, rejected := preference.Normalize(delta)
	if len(rejected) > 0 {
		s.logger.Debug("rejected extracted values", zap.Strings("values", rejected))
	}

	before := rec.Clone()
	preference.Merge(rec, normalized, utterance)
	return !rec.Equal(&before)
}

package conversation

import (
	"context"

	"github.com/kailas-cloud/shopmate/internal/domain/preference"
	searchuc "github.com/kailas-cloud/shopmate/internal/usecase/search"
)

// PreferenceUpdater folds one utterance into a preference record and reports
// whether the record changed.
type PreferenceUpdater interface {
	Update(ctx context.Context, rec *preference.Record, utterance string) bool
}

// Searcher runs the retrieval pipeline for one turn. It degrades to an empty
// result set instead of failing.
type Searcher interface {
	Search(ctx context.Context, utterance string, rec *preference.Record) []searchuc.Result
}

// Replier generates a conversational answer grounded in the preference
// summary and recent history.
type Replier interface {
	GenerateReply(ctx context.Context, summary, history, question string) (string, error)
}

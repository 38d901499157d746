// Package conversation drives one chat turn end to end: intent routing,
// preference updates, product retrieval and reply generation, with every
// collaborator failure degrading to a canned answer instead of an error.
package conversation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopmate/internal/domain"
	domconv "github.com/kailas-cloud/shopmate/internal/domain/conversation"
	"github.com/kailas-cloud/shopmate/internal/domain/intent"
	"github.com/kailas-cloud/shopmate/internal/metrics"
	searchuc "github.com/kailas-cloud/shopmate/internal/usecase/search"
	"github.com/kailas-cloud/shopmate/internal/usecase/session"
)

// Canned answers for the turns that never reach the language model.
const (
	outOfDomainText = "I'm here to help with shopping-related questions like products, prices, or bags. Let me know how I can assist you with that!"
	clearedText     = "Your preferences have been cleared! Feel free to set new ones."
	noResultsText   = "I couldn't find any products matching your criteria. Try adjusting your preferences."
	resultsHeader   = "Here are some products that match your criteria, sorted by price (highest to lowest):"
	fallbackText    = "I'm here to help you find bags and accessories! What are you looking for?"
	technicalText   = "I apologize, but I'm experiencing some technical difficulties. Please try again."
)

// Card is one product rendered for display.
type Card struct {
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	URL      string  `json:"url"`
	ImageURL string  `json:"image_url,omitempty"`
}

// Response is the outcome of one turn.
type Response struct {
	Route    intent.Route `json:"route"`
	Text     string       `json:"text"`
	Products []Card       `json:"products,omitempty"`
}

// Service is the turn orchestrator.
type Service struct {
	prefs         PreferenceUpdater
	searcher      Searcher
	replier       Replier
	historyWindow int
	logger        *zap.Logger
}

func NewService(prefs PreferenceUpdater, searcher Searcher, replier Replier, historyWindow int, logger *zap.Logger) *Service {
	return &Service{
		prefs:         prefs,
		searcher:      searcher,
		replier:       replier,
		historyWindow: historyWindow,
		logger:        logger,
	}
}

// ProcessTurn applies one user message to the session and produces the
// assistant's answer. The session lock is held for the whole turn, so
// concurrent messages on the same session are applied strictly one at a time.
func (s *Service) ProcessTurn(ctx context.Context, sess *session.Session, input string) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("turn pipeline panicked", zap.Any("panic", r))
			resp = Response{Route: intent.RouteGeneralConversation, Text: technicalText}
		}
		metrics.TurnsTotal.WithLabelValues(string(resp.Route)).Inc()
	}()

	sess.Lock()
	defer sess.Unlock()

	if !intent.IsShoppingRelated(input) {
		// Redirected turns leave preferences and history untouched.
		return Response{Route: intent.RouteOutOfDomain, Text: outOfDomainText}
	}

	if intent.IsReset(input) {
		sess.Prefs.Clear()
		resp = Response{Route: intent.RouteGeneralConversation, Text: clearedText}
		s.remember(sess, input, resp.Text)
		return resp
	}

	changed := s.prefs.Update(ctx, &sess.Prefs, input)
	route := intent.Classify(input, changed, sess.Prefs.HasActive())

	switch route {
	case intent.RoutePreferenceUpdate:
		resp = s.acknowledgeUpdate(ctx, sess, input)
	case intent.RouteProductSearch:
		resp = s.present(route, s.searcher.Search(ctx, input, &sess.Prefs))
		s.remember(sess, input, resp.Text)
	default:
		resp = Response{Route: intent.RouteGeneralConversation, Text: s.reply(ctx, sess, input)}
		s.remember(sess, input, resp.Text)
	}
	return resp
}

// acknowledgeUpdate confirms the new preference state and immediately re-runs
// the search against it.
func (s *Service) acknowledgeUpdate(ctx context.Context, sess *session.Session, input string) Response {
	results := s.searcher.Search(ctx, input, &sess.Prefs)
	resp := s.present(intent.RoutePreferenceUpdate, results)
	resp.Text = "Updated preferences to: " + sess.Prefs.Summary() + "\n\n" + resp.Text
	return resp
}

// present formats a result set: a header plus cards, or the no-match answer.
func (s *Service) present(route intent.Route, results []searchuc.Result) Response {
	if len(results) == 0 {
		return Response{Route: route, Text: noResultsText}
	}
	cards := make([]Card, len(results))
	for i, r := range results {
		cards[i] = Card{
			Name:     r.Product.Name,
			Brand:    r.Product.Brand,
			Price:    r.Price,
			URL:      r.Product.URL,
			ImageURL: r.Product.ImageURL,
		}
	}
	return Response{Route: route, Text: resultsHeader, Products: cards}
}

// reply asks the language model for a conversational answer, falling back to
// a canned line when the model is unavailable.
func (s *Service) reply(ctx context.Context, sess *session.Session, input string) string {
	answer, err := s.generate(ctx, sess, input)
	if err != nil {
		s.logger.Warn("reply generation failed, using fallback", zap.Error(err))
		return fallbackText
	}
	return answer
}

// generate asks the language model for a conversational answer. Failures wrap
// domain.ErrLLMUnavailable, a missing replier included.
func (s *Service) generate(ctx context.Context, sess *session.Session, input string) (string, error) {
	if s.replier == nil {
		return "", fmt.Errorf("replier not configured: %w", domain.ErrLLMUnavailable)
	}
	answer, err := s.replier.GenerateReply(ctx, sess.Prefs.Summary(), sess.History.Render(s.historyWindow), input)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w: %w", err, domain.ErrLLMUnavailable)
	}
	return answer, nil
}

func (s *Service) remember(sess *session.Session, input, answer string) {
	sess.History.Add(domconv.SpeakerUser, input)
	sess.History.Add(domconv.SpeakerAssistant, answer)
}

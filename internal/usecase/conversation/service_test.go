package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopmate/internal/domain"
	"github.com/kailas-cloud/shopmate/internal/domain/catalog"
	"github.com/kailas-cloud/shopmate/internal/domain/intent"
	"github.com/kailas-cloud/shopmate/internal/domain/preference"
	searchuc "github.com/kailas-cloud/shopmate/internal/usecase/search"
	"github.com/kailas-cloud/shopmate/internal/usecase/session"
)

type mockUpdater struct {
	changed bool
	apply   func(rec *preference.Record)
	calls   int
}

func (m *mockUpdater) Update(_ context.Context, rec *preference.Record, _ string) bool {
	m.calls++
	if m.apply != nil {
		m.apply(rec)
	}
	return m.changed
}

type mockSearcher struct {
	results []searchuc.Result
	calls   int
}

func (m *mockSearcher) Search(_ context.Context, _ string, _ *preference.Record) []searchuc.Result {
	m.calls++
	return m.results
}

type mockReplier struct {
	answer     string
	err        error
	gotHistory string
}

func (m *mockReplier) GenerateReply(_ context.Context, _, history, _ string) (string, error) {
	m.gotHistory = history
	return m.answer, m.err
}

func newService(u *mockUpdater, sr *mockSearcher, r Replier) *Service {
	return NewService(u, sr, r, 6, zap.NewNop())
}

func result(name string, price float64) searchuc.Result {
	return searchuc.Result{
		Product: catalog.Product{URL: "u/" + name, Name: name, Brand: "Guess", ImageURL: "img/" + name},
		Price:   price,
	}
}

func TestOutOfDomainRedirect(t *testing.T) {
	updater := &mockUpdater{}
	svc := newService(updater, &mockSearcher{}, &mockReplier{answer: "hi"})
	sess := &session.Session{}

	resp := svc.ProcessTurn(context.Background(), sess, "what's the weather today?")
	if resp.Route != intent.RouteOutOfDomain {
		t.Errorf("Route = %q, want out_of_domain", resp.Route)
	}
	if !strings.Contains(resp.Text, "shopping-related questions") {
		t.Errorf("unexpected redirect text %q", resp.Text)
	}
	if updater.calls != 0 {
		t.Error("out-of-domain turn must not run extraction")
	}
	if sess.History.Len() != 0 {
		t.Error("out-of-domain turn must not touch history")
	}
}

func TestResetClearsPreferences(t *testing.T) {
	svc := newService(&mockUpdater{}, &mockSearcher{}, &mockReplier{})
	sess := &session.Session{}
	sess.Prefs.Brands = []string{"Guess"}
	sess.Prefs.Colors = []string{"black"}

	resp := svc.ProcessTurn(context.Background(), sess, "please reset preferences")
	if resp.Text != "Your preferences have been cleared! Feel free to set new ones." {
		t.Errorf("unexpected reset text %q", resp.Text)
	}
	if sess.Prefs.HasActive() {
		t.Error("expected an empty preference record after reset")
	}
	if sess.History.Len() != 2 {
		t.Errorf("History.Len = %d, want 2", sess.History.Len())
	}

	// A repeated reset stays a no-op with the same acknowledgement.
	resp = svc.ProcessTurn(context.Background(), sess, "clear preferences")
	if resp.Text != "Your preferences have been cleared! Feel free to set new ones." {
		t.Errorf("unexpected repeat reset text %q", resp.Text)
	}
	if sess.Prefs.HasActive() {
		t.Error("record must stay empty after repeated reset")
	}
}

func TestPreferenceUpdateAcknowledgesAndSearches(t *testing.T) {
	updater := &mockUpdater{changed: true, apply: func(rec *preference.Record) {
		rec.Brands = []string{"Guess"}
	}}
	searcher := &mockSearcher{results: []searchuc.Result{result("City Tote", 120)}}
	svc := newService(updater, searcher, &mockReplier{})
	sess := &session.Session{}

	resp := svc.ProcessTurn(context.Background(), sess, "show me guess bags")
	if resp.Route != intent.RoutePreferenceUpdate {
		t.Errorf("Route = %q, want preference_update", resp.Route)
	}
	if !strings.HasPrefix(resp.Text, "Updated preferences to: Brands: Guess") {
		t.Errorf("unexpected acknowledgement %q", resp.Text)
	}
	if searcher.calls != 1 {
		t.Errorf("search calls = %d, want 1", searcher.calls)
	}
	if len(resp.Products) != 1 || resp.Products[0].Name != "City Tote" {
		t.Errorf("unexpected products %+v", resp.Products)
	}
}

func TestPreferenceUpdateWithNoMatches(t *testing.T) {
	updater := &mockUpdater{changed: true, apply: func(rec *preference.Record) {
		rec.Brands = []string{"Fossil"}
	}}
	svc := newService(updater, &mockSearcher{}, &mockReplier{})
	sess := &session.Session{}

	resp := svc.ProcessTurn(context.Background(), sess, "only fossil bags")
	if !strings.Contains(resp.Text, "couldn't find any products") {
		t.Errorf("unexpected no-match text %q", resp.Text)
	}
	if len(resp.Products) != 0 {
		t.Errorf("expected no products, got %+v", resp.Products)
	}
}

func TestProductSearchPresentsCards(t *testing.T) {
	searcher := &mockSearcher{results: []searchuc.Result{
		result("Satchel", 200), result("Day Pack", 75),
	}}
	svc := newService(&mockUpdater{}, searcher, &mockReplier{})
	sess := &session.Session{}

	resp := svc.ProcessTurn(context.Background(), sess, "show me some bags")
	if resp.Route != intent.RouteProductSearch {
		t.Errorf("Route = %q, want product_search", resp.Route)
	}
	if !strings.Contains(resp.Text, "sorted by price (highest to lowest)") {
		t.Errorf("unexpected header %q", resp.Text)
	}
	if len(resp.Products) != 2 || resp.Products[0].Price != 200 {
		t.Errorf("unexpected products %+v", resp.Products)
	}
	if sess.History.Len() != 2 {
		t.Errorf("History.Len = %d, want 2", sess.History.Len())
	}
}

func TestProductSearchNoResults(t *testing.T) {
	svc := newService(&mockUpdater{}, &mockSearcher{}, &mockReplier{})
	sess := &session.Session{}

	resp := svc.ProcessTurn(context.Background(), sess, "find me a wallet")
	if resp.Text != "I couldn't find any products matching your criteria. Try adjusting your preferences." {
		t.Errorf("unexpected text %q", resp.Text)
	}
}

func TestGeneralConversationUsesReplier(t *testing.T) {
	replier := &mockReplier{answer: "Happy to help with your bag hunt!"}
	svc := newService(&mockUpdater{}, &mockSearcher{}, replier)
	sess := &session.Session{}
	sess.History.Add("User", "hello")

	resp := svc.ProcessTurn(context.Background(), sess, "thanks for the help")
	if resp.Route != intent.RouteGeneralConversation {
		t.Errorf("Route = %q, want general_conversation", resp.Route)
	}
	if resp.Text != replier.answer {
		t.Errorf("Text = %q, want replier answer", resp.Text)
	}
	if !strings.Contains(replier.gotHistory, "User: hello") {
		t.Errorf("replier history %q missing prior turn", replier.gotHistory)
	}
	if sess.History.Len() != 3 {
		t.Errorf("History.Len = %d, want 3", sess.History.Len())
	}
}

func TestGeneralConversationFallsBack(t *testing.T) {
	cases := []struct {
		name    string
		replier Replier
	}{
		{"replier error", &mockReplier{err: errors.New("model down")}},
		{"no replier", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(&mockUpdater{}, &mockSearcher{}, tc.replier)
			resp := svc.ProcessTurn(context.Background(), &session.Session{}, "thanks for the help")
			if resp.Text != "I'm here to help you find bags and accessories! What are you looking for?" {
				t.Errorf("unexpected fallback %q", resp.Text)
			}
		})
	}
}

func TestChangedRecordOutranksSearchIntent(t *testing.T) {
	updater := &mockUpdater{changed: true, apply: func(rec *preference.Record) {
		rec.Colors = []string{"black"}
	}}
	svc := newService(updater, &mockSearcher{}, &mockReplier{})

	resp := svc.ProcessTurn(context.Background(), &session.Session{}, "show me black bags")
	if resp.Route != intent.RoutePreferenceUpdate {
		t.Errorf("Route = %q, want preference_update", resp.Route)
	}
}

func TestGenerateWrapsLLMUnavailable(t *testing.T) {
	sess := &session.Session{}

	cases := []struct {
		name    string
		replier Replier
	}{
		{"no replier", nil},
		{"provider failure", &mockReplier{err: errors.New("rate limited")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(&mockUpdater{}, &mockSearcher{}, tc.replier)
			_, err := svc.generate(context.Background(), sess, "hello")
			if !errors.Is(err, domain.ErrLLMUnavailable) {
				t.Errorf("err = %v, want ErrLLMUnavailable", err)
			}
		})
	}
}

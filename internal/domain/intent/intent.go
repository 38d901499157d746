// Package intent classifies user turns with table-driven lexical heuristics.
// Each predicate is pure so its keyword table can be tested and swapped
// without touching the turn pipeline.
package intent

import "strings"

// Route is the per-turn classification outcome.
type Route string

const (
	RouteOutOfDomain         Route = "out_of_domain"
	RoutePreferenceUpdate    Route = "preference_update"
	RouteProductSearch       Route = "product_search"
	RouteGeneralConversation Route = "general_conversation"
)

// IsValid reports whether r is a known route.
func (r Route) IsValid() bool {
	switch r {
	case RouteOutOfDomain, RoutePreferenceUpdate, RouteProductSearch, RouteGeneralConversation:
		return true
	}
	return false
}

// shoppingTerms are product nouns and shopping verbs that keep a turn in
// domain.
var shoppingTerms = []string{
	"bag", "handbag", "purse", "tote", "backpack", "clutch", "wallet",
	"shopping", "buy", "purchase", "price", "cost", "delivery", "shipping",
	"brand", "leather", "canvas", "product", "item", "store",
}

// courtesyTerms are conversational phrases that also keep a turn in domain
// (greetings, thanks, help, reset).
var courtesyTerms = []string{"hi", "hello", "thank", "bye", "help", "clear", "reset"}

// searchKeywords are explicit request verbs that always trigger a search.
var searchKeywords = []string{
	"show", "find", "search", "look", "recommend", "suggest", "want", "need",
	"display", "see", "browse", "shopping", "buy", "purchase", "get me",
	"what about", "how about", "any", "do you have",
}

// productTerms are category nouns that imply a search on their own.
var productTerms = []string{
	"bag", "handbag", "purse", "tote", "backpack", "clutch", "wallet",
	"crossbody", "shoulder", "messenger", "satchel", "briefcase",
}

// refinementTerms are material/color/price-sentiment words that read as
// refinements while preferences are active.
var refinementTerms = []string{
	"leather", "canvas", "black", "brown", "cheap", "expensive", "small", "large",
}

// resetPhrases clear the preference record when present.
var resetPhrases = []string{"clear preferences", "reset preferences", "start over"}

// shortReplyMaxWords is the word count at or below which a reply counts as an
// implicit refinement while preferences are active.
const shortReplyMaxWords = 3

// IsShoppingRelated reports whether the utterance belongs to the shopping
// domain or is basic conversational courtesy.
func IsShoppingRelated(utterance string) bool {
	lower := strings.ToLower(utterance)
	return containsAny(lower, shoppingTerms) || containsAny(lower, courtesyTerms)
}

// WantsSearch decides whether the turn should trigger product retrieval.
// Explicit request verbs always win; with active preferences, refinement
// words or a short reply count as an implicit search; a bare category noun
// is enough either way.
func WantsSearch(utterance string, hasPreferences bool) bool {
	lower := strings.ToLower(utterance)

	if containsAny(lower, searchKeywords) {
		return true
	}
	if hasPreferences {
		if containsAny(lower, refinementTerms) {
			return true
		}
		if len(strings.Fields(utterance)) <= shortReplyMaxWords {
			return true
		}
	}
	return containsAny(lower, productTerms)
}

// IsReset reports whether the utterance asks to clear all preferences.
func IsReset(utterance string) bool {
	return containsAny(strings.ToLower(utterance), resetPhrases)
}

// Classify applies the route priority order: out-of-domain, then preference
// update, then search, then general conversation. preferenceChanged reports
// whether this turn's extract+merge cycle altered the record; a changed
// record outranks search intent.
func Classify(utterance string, preferenceChanged, hasPreferences bool) Route {
	if !IsShoppingRelated(utterance) {
		return RouteOutOfDomain
	}
	if preferenceChanged {
		return RoutePreferenceUpdate
	}
	if WantsSearch(utterance, hasPreferences) {
		return RouteProductSearch
	}
	return RouteGeneralConversation
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

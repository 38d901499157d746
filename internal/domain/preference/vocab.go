package preference

import "strings"

// Categories is the fixed bag category vocabulary. Stored lowercase; category
// matching is exact after lowercasing.
var Categories = map[string]struct{}{
	"tote bag":     {},
	"shoulder bag": {},
	"duffle bag":   {},
	"backpack":     {},
	"clutch":       {},
	"crossbody":    {},
	"handbag":      {},
	"messenger":    {},
	"satchel":      {},
	"laptop bag":   {},
	"briefcase":    {},
	"wristlet":     {},
	"wallet":       {},
	"purse":        {},
}

// categoryCorrections maps common singular/variant spellings to canonical
// category names.
var categoryCorrections = map[string]string{
	"tote":       "tote bag",
	"cross body": "crossbody",
	"cross-body": "crossbody",
	"shoulder":   "shoulder bag",
	"laptop":     "laptop bag",
	"duffle":     "duffle bag",
	"duffel":     "duffle bag",
}

// Brands is the fixed brand vocabulary in canonical casing.
var Brands = []string{
	"1978W", "Active Flex", "Alan Pinkus", "Amelia Lane", "American Tourister",
	"Armani Exchange", "Australian House & Garden", "Basque", "Belle & Bloom",
	"Billabong", "Boutique Retailer", "Calvin Klein", "Cellini", "Cellini Sport",
	"Commonry", "Country Road", "Creed", "David Lawrence", "Delsey", "Disney",
	"Dune London", "Elliker", "emerge Woman", "Fella Hamilton", "Fine Day",
	"Forever New", "Fossil", "GAP", "Guess", "Hedgren", "Hot Wheels",
	"Jane Debster", "Joan Weisz", "Kinnon", "La Enviro", "Lacoste",
	"Lauren Ralph Lauren", "Levi's", "Madison Accessories", "Maine & Crawford",
	"Marcs", "Maxwell & Williams", "Milleni", "Mimco", "Mocha",
	"Morgan & Taylor", "Nakedvice", "NINA", "Nine West", "Novo Shoes", "OiOi",
	"Olga Berg", "Oxford", "PIERRE CARDIN", "PINK INC", "Piper", "Prairie",
	"Radley", "Ravella", "Rebecca Minkoff", "REVIEW", "Roxy", "RVCA",
	"Samsonite", "Sandler", "Sass & Bide", "Scala", "Seafolly", "Seed Heritage",
	"Senso", "Status Anxiety", "Steve Madden", "Taking Shape", "TATONKA",
	"Tokito", "Tommy Hilfiger", "Tonic", "Trenery", "Trent Nathan", "Unison",
	"Wishes", "Witchery", "Yellow Drama",
}

// brandCorrections maps abbreviations and partial names to canonical brands.
var brandCorrections = map[string]string{
	"ck":           "Calvin Klein",
	"rm":           "Rebecca Minkoff",
	"th":           "Tommy Hilfiger",
	"pierre":       "PIERRE CARDIN",
	"calvin":       "Calvin Klein",
	"tommy":        "Tommy Hilfiger",
	"ralph lauren": "Lauren Ralph Lauren",
	"american t":   "American Tourister",
	"fossil bag":   "Fossil",
	"guess bag":    "Guess",
}

// Colors is the fixed color vocabulary. The language model maps colors to it
// best-effort; unmapped colors are passed through rather than rejected.
var Colors = map[string]struct{}{
	"black": {}, "brown": {}, "blue": {}, "red": {}, "green": {},
	"yellow": {}, "white": {}, "grey": {}, "gray": {}, "pink": {},
	"purple": {}, "orange": {}, "beige": {}, "navy": {}, "cream": {},
	"tan": {}, "gold": {}, "silver": {},
}

// brandsByLower indexes canonical brands by their lowercase form.
var brandsByLower = func() map[string]string {
	m := make(map[string]string, len(Brands))
	for _, b := range Brands {
		m[strings.ToLower(b)] = b
	}
	return m
}()

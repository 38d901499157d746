package preference

import "testing"

func TestWantsAppend(t *testing.T) {
	tests := []struct {
		utterance string
		want      bool
	}{
		{"I also want black ones", true},
		{"show me red bags as well", true},
		{"additionally, some totes", true},
		{"black and gold", true},
		{"red ones too", true},
		{"along with a backpack", true},
		{"show me red bags instead", false},
		{"I want a tote", false},
	}

	for _, tt := range tests {
		if got := WantsAppend(tt.utterance); got != tt.want {
			t.Errorf("WantsAppend(%q) = %v, want %v", tt.utterance, got, tt.want)
		}
	}
}

func TestMergeAppendMode(t *testing.T) {
	rec := Record{Colors: []string{"black", "red"}}
	Merge(&rec, Delta{Colors: []string{"red", "blue"}}, "I also like red and blue")

	want := []string{"black", "red", "blue"}
	if !eqSlice(rec.Colors, want) {
		t.Errorf("colors = %v, want %v", rec.Colors, want)
	}
}

func TestMergeReplaceMode(t *testing.T) {
	rec := Record{Categories: []string{"tote bag"}}
	Merge(&rec, Delta{Categories: []string{"backpack"}}, "show me backpacks instead")

	if !eqSlice(rec.Categories, []string{"backpack"}) {
		t.Errorf("categories = %v, want [backpack]", rec.Categories)
	}
}

func TestMergeReplaceModeAbsentFieldUntouched(t *testing.T) {
	rec := Record{
		Brands: []string{"Guess"},
		Colors: []string{"black"},
	}
	// delta mentions only colors; brands must survive
	Merge(&rec, Delta{Colors: []string{"red"}}, "red ones please")

	if !eqSlice(rec.Brands, []string{"Guess"}) {
		t.Errorf("brands erased by absent delta field: %v", rec.Brands)
	}
	if !eqSlice(rec.Colors, []string{"red"}) {
		t.Errorf("colors = %v, want [red]", rec.Colors)
	}
}

func TestMergePriceOverwriteIsModeIndependent(t *testing.T) {
	rec := Record{PriceMax: fp(200)}
	// append-mode utterance, price must still overwrite
	Merge(&rec, Delta{PriceMax: fp(100)}, "also keep it under $100")

	if rec.PriceMax == nil || *rec.PriceMax != 100 {
		t.Errorf("price_max = %v, want 100", rec.PriceMax)
	}
}

func TestMergeNilPriceNeverClears(t *testing.T) {
	rec := Record{PriceMin: fp(50), PriceMax: fp(200)}
	Merge(&rec, Delta{Colors: []string{"black"}}, "black ones")

	if rec.PriceMin == nil || *rec.PriceMin != 50 {
		t.Error("price_min cleared by delta without price")
	}
	if rec.PriceMax == nil || *rec.PriceMax != 200 {
		t.Error("price_max cleared by delta without price")
	}
}

func TestMergeIdempotent(t *testing.T) {
	delta := Delta{
		PriceMax:   fp(150),
		Brands:     []string{"Fossil"},
		Colors:     []string{"black", "tan"},
		Categories: []string{"crossbody"},
	}

	for _, utterance := range []string{"also fossil crossbody", "fossil crossbody"} {
		rec := Record{Colors: []string{"black"}, PriceMax: fp(300)}
		Merge(&rec, delta, utterance)
		once := rec.Clone()

		Merge(&rec, delta, utterance)
		if !rec.Equal(&once) {
			t.Errorf("merge not idempotent for %q: %+v vs %+v", utterance, rec, once)
		}
	}
}

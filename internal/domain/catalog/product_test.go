package catalog

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"129.95", 129.95, false},
		{"$129.95", 129.95, false},
		{"$1,234.50", 1234.5, false},
		{" 80 ", 80, false},
		{"", 0, true},
		{"N/A", 0, true},
		{"$", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePrice(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePrice(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSearchText(t *testing.T) {
	p := Product{Name: "Guess Mini Tote", Content: "Black PEBBLED leather"}
	got := p.SearchText()
	want := "guess mini tote black pebbled leather"
	if got != want {
		t.Errorf("SearchText() = %q, want %q", got, want)
	}
}

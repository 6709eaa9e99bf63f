package textutil

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "Dune", "Dune", 100},
		{"case and punctuation", "the matrix!", "The Matrix", 100},
		{"diacritics", "Amélie", "AMELIE", 100},
		{"one edit", "Dune", "Dunk", 75},
		{"empty", "", "Dune", 0},
		{"punctuation only", "!!!", "Dune", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenSortRatioIgnoresWordOrder(t *testing.T) {
	if got := TokenSortRatio("Rings of the Lord", "the lord of the rings"); got >= 100 {
		t.Errorf("expected duplicate token to lower score, got %d", got)
	}
	if got := TokenSortRatio("Wire, The", "The Wire"); got != 100 {
		t.Errorf("TokenSortRatio reordered = %d, want 100", got)
	}
}

func TestTokenSetRatioSubset(t *testing.T) {
	if got := TokenSetRatio("Dune", "Dune Messiah"); got != 100 {
		t.Errorf("TokenSetRatio subset = %d, want 100", got)
	}
	if got := TokenSetRatio("Dune", "Emma"); got >= 50 {
		t.Errorf("TokenSetRatio disjoint = %d, want low score", got)
	}
	if got := TokenSetRatio("", "Emma"); got != 0 {
		t.Errorf("TokenSetRatio empty = %d, want 0", got)
	}
}

func TestWeightedRatioPrefersExactTitle(t *testing.T) {
	exact := WeightedRatio("Dune", "Dune")
	superset := WeightedRatio("Dune", "Dune Messiah")
	if exact <= superset {
		t.Fatalf("expected exact match (%d) to outscore superset (%d)", exact, superset)
	}
	if superset != 95 {
		t.Fatalf("expected discounted token set score 95, got %d", superset)
	}
	if got := WeightedRatio("The Hobbit", "Hobbit, The"); got < 90 {
		t.Fatalf("expected reordered title to score high, got %d", got)
	}
}

func TestStripParenthetical(t *testing.T) {
	tests := map[string]string{
		"Dune (2021 film)":                "Dune",
		"The Office (American TV series)": "The Office",
		"Dune":                            "Dune",
		"(Untitled)":                      "(Untitled)",
		"Alien (film) (franchise)":        "Alien (film)",
		"  Heat (1995 film)  ":            "Heat",
		"Se7en (film":                     "Se7en (film",
	}
	for input, want := range tests {
		if got := StripParenthetical(input); got != want {
			t.Errorf("StripParenthetical(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTokenizeFoldsAndSplits(t *testing.T) {
	got := Tokenize("Pokémon: The First Movie!")
	want := []string{"pokemon", "the", "first", "movie"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize() = %v, want %v", got, want)
		}
	}
}

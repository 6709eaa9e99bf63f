package media_test

import (
	"testing"

	"mediaextract/internal/media"
)

func TestParseKindIsExact(t *testing.T) {
	tests := []struct {
		value string
		want  media.Kind
		ok    bool
	}{
		{"movie", media.KindMovie, true},
		{"tv", media.KindTV, true},
		{"book", media.KindBook, true},
		{"Book", "", false},
		{" MOVIE ", "", false},
		{"movie ", "", false},
		{"film", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := media.ParseKind(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = (%q, %v), want (%q, %v)", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

package media_test

import (
	"encoding/json"
	"errors"
	"testing"

	"mediaextract/internal/media"
)

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    media.Candidate
		wantErr bool
	}{
		{
			name: "movie with numeric year",
			raw:  `{"kind":"movie","title":"Dune","year":2021}`,
			want: media.Candidate{Kind: media.KindMovie, Title: "Dune", Year: 2021},
		},
		{
			name: "book with author",
			raw:  `{"kind":"book","title":" Dune ","author":"Frank Herbert"}`,
			want: media.Candidate{Kind: media.KindBook, Title: "Dune", Author: "Frank Herbert"},
		},
		{
			name: "year as string",
			raw:  `{"kind":"tv","title":"The Wire","year":"2002"}`,
			want: media.Candidate{Kind: media.KindTV, Title: "The Wire", Year: 2002},
		},
		{
			name: "legacy type key",
			raw:  `{"type":"movie","title":"Alien"}`,
			want: media.Candidate{Kind: media.KindMovie, Title: "Alien"},
		},
		{
			name: "unparseable year ignored",
			raw:  `{"kind":"movie","title":"Heat","year":"mid nineties"}`,
			want: media.Candidate{Kind: media.KindMovie, Title: "Heat"},
		},
		{
			name: "fractional year ignored",
			raw:  `{"kind":"movie","title":"Heat","year":1995.5}`,
			want: media.Candidate{Kind: media.KindMovie, Title: "Heat"},
		},
		{
			name: "non-string author ignored",
			raw:  `{"kind":"book","title":"Emma","author":["Jane Austen"]}`,
			want: media.Candidate{Kind: media.KindBook, Title: "Emma"},
		},
		{name: "unsupported kind", raw: `{"kind":"spaceship","title":"???"}`, wantErr: true},
		{name: "capitalized kind", raw: `{"kind":"Book","title":"Emma"}`, wantErr: true},
		{name: "padded kind", raw: `{"kind":" movie ","title":"Heat"}`, wantErr: true},
		{name: "missing kind", raw: `{"title":"Dune"}`, wantErr: true},
		{name: "missing title", raw: `{"kind":"movie"}`, wantErr: true},
		{name: "blank title", raw: `{"kind":"movie","title":"   "}`, wantErr: true},
		{name: "numeric title", raw: `{"kind":"movie","title":1984}`, wantErr: true},
		{name: "not an object", raw: `"Dune"`, wantErr: true},
		{name: "null record", raw: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := media.ParseCandidate(json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !errors.Is(err, media.ErrInvalidCandidate) {
					t.Fatalf("expected ErrInvalidCandidate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCandidate returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseCandidate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKindSearchHint(t *testing.T) {
	tests := map[media.Kind]string{
		media.KindMovie:       "film",
		media.KindTV:          "television series",
		media.KindBook:        "book",
		media.Kind("podcast"): "",
	}
	for kind, want := range tests {
		if got := kind.SearchHint(); got != want {
			t.Errorf("%s.SearchHint() = %q, want %q", kind, got, want)
		}
	}
}

func TestMetadataSerializesEveryField(t *testing.T) {
	encoded, err := json.Marshal(media.Metadata{Title: "Dune", Type: media.KindMovie})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"title", "type", "author", "year", "description"} {
		value, ok := decoded[key]
		if !ok {
			t.Fatalf("expected key %q in %s", key, encoded)
		}
		if _, ok := value.(string); !ok {
			t.Fatalf("expected %q to be a string, got %T", key, value)
		}
	}
}

func TestPipelineErrorJSON(t *testing.T) {
	perr := media.NewPipelineError(media.StageClassify, "classifier returned malformed JSON", "not json", errors.New("boom"))
	encoded, err := json.Marshal(perr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"error":"classifier returned malformed JSON","raw":"not json"}` {
		t.Fatalf("unexpected encoding: %s", encoded)
	}
	wrapped := errors.Join(errors.New("outer"), perr)
	got, ok := media.AsPipelineError(wrapped)
	if !ok || got != perr {
		t.Fatalf("expected AsPipelineError to find the pipeline error")
	}
}

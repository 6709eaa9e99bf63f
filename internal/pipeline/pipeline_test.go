package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mediaextract/internal/media"
	"mediaextract/internal/metadata"
	"mediaextract/internal/services"
	"mediaextract/internal/services/vision"
)

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) ExtractText(context.Context, []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeClassifier struct {
	records []json.RawMessage
	err     error
	texts   []string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) ([]json.RawMessage, error) {
	f.texts = append(f.texts, text)
	return f.records, f.err
}

type fakeLookup struct {
	mu       sync.Mutex
	requests []metadata.LookupRequest
	fn       func(ctx context.Context, req metadata.LookupRequest) media.Metadata
}

func (f *fakeLookup) Lookup(ctx context.Context, req metadata.LookupRequest) media.Metadata {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, req)
	}
	return media.Metadata{Title: req.Title, Type: req.Kind}
}

func rawRecords(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item))
	}
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		query, ocr, want string
	}{
		{"find this", "DUNE\nFrank Herbert", "find this DUNE\nFrank Herbert"},
		{"  only query ", "", "only query"},
		{"", " only ocr ", "only ocr"},
		{" ", "\n", ""},
	}
	for _, tt := range tests {
		if got := Merge(tt.query, tt.ocr); got != tt.want {
			t.Fatalf("Merge(%q, %q) = %q, want %q", tt.query, tt.ocr, got, tt.want)
		}
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	ocr := &fakeOCR{}
	cls := &fakeClassifier{}
	lookup := &fakeLookup{}
	p := New(ocr, cls, lookup, Options{}, nil)

	_, err := p.Run(context.Background(), Input{Query: "   "})
	if !errors.Is(err, ErrEmptyInput) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected empty input validation error, got %v", err)
	}
	if ocr.calls != 0 || len(cls.texts) != 0 || len(lookup.requests) != 0 {
		t.Fatal("no stage should run for empty input")
	}
}

func TestRunIsolatesInvalidCandidates(t *testing.T) {
	cls := &fakeClassifier{records: rawRecords(
		`{"kind":"movie","title":"Dune"}`,
		`{"kind":"spaceship","title":"???"}`,
		`{"kind":"book","title":"Dune"}`,
	)}
	p := New(nil, cls, &fakeLookup{}, Options{}, nil)

	result, err := p.Run(context.Background(), Input{Query: "dune"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %+v", result.Records)
	}
	if result.Records[0].Type != media.KindMovie || result.Records[1].Type != media.KindBook {
		t.Fatalf("records out of order: %+v", result.Records)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Index != 1 {
		t.Fatalf("expected one diagnostic for index 1, got %+v", result.Diagnostics)
	}
	if !strings.Contains(result.Diagnostics[0].Reason, "spaceship") {
		t.Fatalf("unexpected reason %q", result.Diagnostics[0].Reason)
	}
}

func TestRunMergesQueryBeforeOCRText(t *testing.T) {
	ocr := &fakeOCR{text: "THE HOBBIT\n"}
	cls := &fakeClassifier{records: rawRecords()}
	p := New(ocr, cls, &fakeLookup{}, Options{}, nil)

	result, err := p.Run(context.Background(), Input{Image: []byte("img"), Query: "book cover"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(cls.texts) != 1 || cls.texts[0] != "book cover THE HOBBIT" {
		t.Fatalf("unexpected classifier input %q", cls.texts)
	}
	if result.Records == nil || len(result.Records) != 0 {
		t.Fatalf("expected empty non-nil records, got %#v", result.Records)
	}
}

func TestRunSkipsClassifierWhenImageHasNoText(t *testing.T) {
	cls := &fakeClassifier{}
	p := New(&fakeOCR{text: "  "}, cls, &fakeLookup{}, Options{}, nil)

	result, err := p.Run(context.Background(), Input{Image: []byte("img")})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(cls.texts) != 0 {
		t.Fatal("classifier should not be called without text")
	}
	if result.Records == nil || len(result.Records) != 0 {
		t.Fatalf("expected empty records, got %#v", result.Records)
	}
}

func TestRunOCRFailureIsBatchFatal(t *testing.T) {
	raw := json.RawMessage(`{"error":{"code":403,"message":"API key not valid"}}`)
	apiErr := &vision.APIError{StatusCode: 403, Message: "API key not valid", Raw: raw}
	ocr := &fakeOCR{err: services.Wrap(services.ErrExternalService, "ocr", "annotate", "", apiErr)}
	cls := &fakeClassifier{}
	p := New(ocr, cls, &fakeLookup{}, Options{}, nil)

	_, err := p.Run(context.Background(), Input{Image: []byte("img"), Query: "also text"})
	perr, ok := media.AsPipelineError(err)
	if !ok {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if perr.Stage != media.StageOCR || perr.Message != "OCR failed with status code 403: API key not valid" {
		t.Fatalf("unexpected pipeline error: %+v", perr)
	}
	if got, ok := perr.Raw.(json.RawMessage); !ok || string(got) != string(raw) {
		t.Fatalf("expected upstream payload as raw, got %#v", perr.Raw)
	}
	if len(cls.texts) != 0 {
		t.Fatal("classifier must not run after OCR failure")
	}

	p = New(&fakeOCR{err: errors.New("dial tcp: refused")}, cls, &fakeLookup{}, Options{}, nil)
	_, err = p.Run(context.Background(), Input{Image: []byte("img")})
	perr, ok = media.AsPipelineError(err)
	if !ok || perr.Raw != nil || !strings.HasPrefix(perr.Message, "OCR error: ") {
		t.Fatalf("unexpected transport failure: %#v", err)
	}
}

func TestRunClassifierFailureIsBatchFatal(t *testing.T) {
	classifyErr := media.NewPipelineError(media.StageClassify, "classifier returned malformed JSON", "nope", nil)
	lookup := &fakeLookup{}
	p := New(nil, &fakeClassifier{err: classifyErr}, lookup, Options{}, nil)

	_, err := p.Run(context.Background(), Input{Query: "x"})
	if perr, ok := media.AsPipelineError(err); !ok || perr != classifyErr {
		t.Fatalf("expected classifier error to pass through, got %v", err)
	}
	if len(lookup.requests) != 0 {
		t.Fatal("no lookups after classifier failure")
	}

	p = New(nil, &fakeClassifier{err: errors.New("boom")}, lookup, Options{}, nil)
	_, err = p.Run(context.Background(), Input{Query: "x"})
	if perr, ok := media.AsPipelineError(err); !ok || perr.Stage != media.StageClassify {
		t.Fatalf("plain classifier errors should become PipelineErrors, got %v", err)
	}
}

func TestRunRecoversPanickingCandidate(t *testing.T) {
	lookup := &fakeLookup{fn: func(_ context.Context, req metadata.LookupRequest) media.Metadata {
		if req.Title == "Boom" {
			panic("catalog exploded")
		}
		return media.Metadata{Title: req.Title, Type: req.Kind}
	}}
	cls := &fakeClassifier{records: rawRecords(
		`{"kind":"movie","title":"Boom"}`,
		`{"kind":"tv","title":"Fargo","year":2014}`,
	)}
	p := New(nil, cls, lookup, Options{Concurrency: 2}, nil)

	result, err := p.Run(context.Background(), Input{Query: "x"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].Title != "Fargo" {
		t.Fatalf("unexpected records: %+v", result.Records)
	}
	if len(result.Diagnostics) != 1 || !strings.Contains(result.Diagnostics[0].Reason, "catalog exploded") {
		t.Fatalf("unexpected diagnostics: %+v", result.Diagnostics)
	}
}

func TestRunDropsEmptyResolvedTitle(t *testing.T) {
	lookup := &fakeLookup{fn: func(context.Context, metadata.LookupRequest) media.Metadata {
		return media.Metadata{Title: "   "}
	}}
	cls := &fakeClassifier{records: rawRecords(`{"kind":"book","title":"Emma"}`)}
	result, err := New(nil, cls, lookup, Options{}, nil).Run(context.Background(), Input{Query: "x"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 0 || len(result.Diagnostics) != 1 {
		t.Fatalf("expected candidate dropped, got %+v", result)
	}
}

func TestRunPassesCandidateHintsAndDeadline(t *testing.T) {
	var sawDeadline atomic.Bool
	lookup := &fakeLookup{fn: func(ctx context.Context, req metadata.LookupRequest) media.Metadata {
		if _, ok := ctx.Deadline(); ok {
			sawDeadline.Store(true)
		}
		if idx, ok := services.CandidateIndexFromContext(ctx); !ok || idx != 0 {
			t.Errorf("expected candidate index 0 in context, got %d %v", idx, ok)
		}
		return media.Metadata{Title: req.Title, Type: req.Kind}
	}}
	cls := &fakeClassifier{records: rawRecords(`{"kind":"book","title":"Emma","author":"Jane Austen","year":"1815"}`)}
	p := New(nil, cls, lookup, Options{CandidateTimeout: time.Second}, nil)

	if _, err := p.Run(context.Background(), Input{Query: "x"}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := metadata.LookupRequest{Kind: media.KindBook, Title: "Emma", Author: "Jane Austen", Year: 1815}
	if len(lookup.requests) != 1 || lookup.requests[0] != want {
		t.Fatalf("unexpected lookup request: %+v", lookup.requests)
	}
	if !sawDeadline.Load() {
		t.Fatal("lookup context should carry the candidate deadline")
	}
}

func TestRunBoundsConcurrencyAndKeepsOrder(t *testing.T) {
	var active, peak atomic.Int32
	lookup := &fakeLookup{fn: func(_ context.Context, req metadata.LookupRequest) media.Metadata {
		n := active.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return media.Metadata{Title: req.Title, Type: req.Kind}
	}}
	var items []string
	for _, title := range []string{"A", "B", "C", "D", "E", "F"} {
		items = append(items, `{"kind":"movie","title":"`+title+`"}`)
	}
	p := New(nil, &fakeClassifier{records: rawRecords(items...)}, lookup, Options{Concurrency: 2}, nil)

	result, err := p.Run(context.Background(), Input{Query: "x"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent lookups, saw %d", peak.Load())
	}
	var titles []string
	for _, record := range result.Records {
		titles = append(titles, record.Title)
	}
	if strings.Join(titles, "") != "ABCDEF" {
		t.Fatalf("records out of order: %v", titles)
	}
}

func TestRunCapsCandidates(t *testing.T) {
	cls := &fakeClassifier{records: rawRecords(
		`{"kind":"movie","title":"A"}`,
		`{"kind":"movie","title":"B"}`,
		`{"kind":"movie","title":"C"}`,
	)}
	lookup := &fakeLookup{}
	result, err := New(nil, cls, lookup, Options{MaxCandidates: 2}, nil).Run(context.Background(), Input{Query: "x"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 2 || len(lookup.requests) != 2 {
		t.Fatalf("expected 2 resolved candidates, got %+v", result.Records)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Index != 2 {
		t.Fatalf("expected overflow diagnostic, got %+v", result.Diagnostics)
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mediaextract/internal/logging"
	"mediaextract/internal/media"
	"mediaextract/internal/metadata"
	"mediaextract/internal/services"
	"mediaextract/internal/services/vision"
)

const (
	defaultConcurrency      = 4
	defaultCandidateTimeout = 45 * time.Second
	defaultMaxCandidates    = 20

	stageResolve = "resolve"
)

// ErrEmptyInput rejects a request that carries neither an image nor a query.
var ErrEmptyInput = fmt.Errorf("%w: an image or a query is required", services.ErrValidation)

// TextExtractor converts an image into text.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Classifier lists raw candidate records found in text.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]json.RawMessage, error)
}

// Lookup resolves one candidate to a metadata record.
type Lookup interface {
	Lookup(ctx context.Context, req metadata.LookupRequest) media.Metadata
}

// Input is one extraction request. At least one field must be set.
type Input struct {
	Image []byte
	Query string
}

// Diagnostic records why a classifier item was dropped.
type Diagnostic struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitempty"`
}

// Result is the outcome of a successful run. Records keeps classifier order.
type Result struct {
	Records     []media.Metadata `json:"records"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}

// Options bounds the per-candidate fan-out.
type Options struct {
	// Concurrency is how many candidates resolve at once. 1 is sequential.
	Concurrency int
	// CandidateTimeout caps each candidate's resolver and catalog calls.
	CandidateTimeout time.Duration
	// MaxCandidates drops classifier items beyond this count.
	MaxCandidates int
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.CandidateTimeout <= 0 {
		o.CandidateTimeout = defaultCandidateTimeout
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = defaultMaxCandidates
	}
	return o
}

// Pipeline sequences OCR, classification, and per-candidate lookup.
type Pipeline struct {
	ocr        TextExtractor
	classifier Classifier
	lookup     Lookup
	opts       Options
	logger     *slog.Logger
}

// New builds a Pipeline. ocr may be nil when only text queries are served.
func New(ocr TextExtractor, classifier Classifier, lookup Lookup, opts Options, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		ocr:        ocr,
		classifier: classifier,
		lookup:     lookup,
		opts:       opts.withDefaults(),
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Merge combines the query and OCR text, query first.
func Merge(query, ocrText string) string {
	query = strings.TrimSpace(query)
	ocrText = strings.TrimSpace(ocrText)
	switch {
	case query != "" && ocrText != "":
		return strings.TrimSpace(query + " " + ocrText)
	case query != "":
		return query
	default:
		return ocrText
	}
}

// Run executes the pipeline. OCR and classification failures abort the run
// with a *media.PipelineError. Individual candidates never abort it: invalid
// items are dropped with a diagnostic and lookup failures degrade to the
// candidate's own title.
func (p *Pipeline) Run(ctx context.Context, in Input) (Result, error) {
	if len(in.Image) == 0 && strings.TrimSpace(in.Query) == "" {
		return Result{}, ErrEmptyInput
	}
	logger := logging.WithContext(ctx, p.logger)
	started := time.Now()

	var ocrText string
	if len(in.Image) > 0 {
		text, err := p.acquireText(ctx, in.Image)
		if err != nil {
			return Result{}, err
		}
		ocrText = text
	}

	merged := Merge(in.Query, ocrText)
	if merged == "" {
		logger.Info("no text to classify",
			logging.Args(logging.DecisionAttrs("classification", "skipped", "image contained no text and no query given")...)...)
		return Result{Records: []media.Metadata{}}, nil
	}

	if p.classifier == nil {
		return Result{}, media.NewPipelineError(media.StageClassify, "classifier is not configured", nil,
			services.Wrap(services.ErrConfiguration, "pipeline", "classify", "no classifier", nil))
	}
	raw, err := p.classifier.Classify(ctx, merged)
	if err != nil {
		if _, ok := media.AsPipelineError(err); ok {
			return Result{}, err
		}
		return Result{}, media.NewPipelineError(media.StageClassify, "LLM error: "+err.Error(), nil, err)
	}

	result := p.resolveAll(ctx, raw)
	logger.Info("extraction complete",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.Int("candidates", len(raw)),
		logging.Int("records", len(result.Records)),
		logging.Int("dropped", len(result.Diagnostics)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (p *Pipeline) acquireText(ctx context.Context, image []byte) (string, error) {
	ctx = services.WithStage(ctx, media.StageOCR)
	logger := logging.WithContext(ctx, p.logger)
	if p.ocr == nil {
		return "", media.NewPipelineError(media.StageOCR, "OCR is not configured", nil,
			services.Wrap(services.ErrConfiguration, "pipeline", "ocr", "no text extractor", nil))
	}
	text, err := p.ocr.ExtractText(ctx, image)
	if err != nil {
		logging.ErrorWithContext(logger, "text acquisition failed", "ocr_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the Vision API key and quota"),
		)
		return "", ocrError(err)
	}
	logger.Debug("text acquired", logging.Int("chars", len([]rune(text))))
	return text, nil
}

// ocrError surfaces the Vision error payload as the diagnostic raw value.
func ocrError(err error) error {
	var apiErr *vision.APIError
	if errors.As(err, &apiErr) {
		var raw any
		if len(apiErr.Raw) > 0 {
			raw = apiErr.Raw
		}
		return media.NewPipelineError(media.StageOCR, apiErr.Error(), raw, err)
	}
	return media.NewPipelineError(media.StageOCR, "OCR error: "+err.Error(), nil, err)
}

type slot struct {
	record *media.Metadata
	diag   *Diagnostic
}

func (p *Pipeline) resolveAll(ctx context.Context, raw []json.RawMessage) Result {
	var overflow []Diagnostic
	if len(raw) > p.opts.MaxCandidates {
		for i := p.opts.MaxCandidates; i < len(raw); i++ {
			overflow = append(overflow, Diagnostic{Index: i, Reason: "exceeds max candidates", Raw: string(raw[i])})
		}
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "classifier returned too many candidates", "candidate_overflow",
			logging.Int("returned", len(raw)),
			logging.Int("limit", p.opts.MaxCandidates),
			logging.String(logging.FieldErrorHint, "raise pipeline.max_candidates if this is expected"),
			logging.String(logging.FieldImpact, "extra candidates were not resolved"),
		)
		raw = raw[:p.opts.MaxCandidates]
	}

	slots := make([]slot, len(raw))
	sem := make(chan struct{}, p.opts.Concurrency)
	var wg sync.WaitGroup
	for idx := range raw {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			slots[i] = p.resolveOne(ctx, i, raw[i])
		}(idx)
	}
	wg.Wait()

	result := Result{Records: make([]media.Metadata, 0, len(raw))}
	for _, s := range slots {
		if s.record != nil {
			result.Records = append(result.Records, *s.record)
		}
		if s.diag != nil {
			result.Diagnostics = append(result.Diagnostics, *s.diag)
		}
	}
	result.Diagnostics = append(result.Diagnostics, overflow...)
	return result
}

// resolveOne is the failure boundary for a single candidate.
func (p *Pipeline) resolveOne(ctx context.Context, index int, raw json.RawMessage) (out slot) {
	ctx = services.WithCandidateIndex(services.WithStage(ctx, stageResolve), index)
	logger := logging.WithContext(ctx, p.logger)

	drop := func(reason string) slot {
		logging.WarnWithContext(logger, "candidate dropped", "candidate_dropped",
			logging.String("reason", reason),
			logging.String("raw", string(raw)),
			logging.String(logging.FieldErrorHint, "classifier produced an unusable item"),
			logging.String(logging.FieldImpact, "candidate omitted from response"),
		)
		return slot{diag: &Diagnostic{Index: index, Reason: reason, Raw: string(raw)}}
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = drop(fmt.Sprintf("panic: %v", rec))
		}
	}()

	candidate, err := media.ParseCandidate(raw)
	if err != nil {
		return drop(err.Error())
	}
	if p.lookup == nil {
		return drop("metadata lookup is not configured")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, p.opts.CandidateTimeout)
	defer cancel()
	record := p.lookup.Lookup(lookupCtx, metadata.LookupRequest{
		Kind:   candidate.Kind,
		Title:  candidate.Title,
		Year:   candidate.Year,
		Author: candidate.Author,
	}).Normalized()
	if record.Title == "" {
		return drop("resolved title is empty")
	}
	logger.Debug("candidate resolved",
		logging.String("kind", candidate.Kind.String()),
		logging.String("title", record.Title),
	)
	return slot{record: &record}
}

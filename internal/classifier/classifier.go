package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mediaextract/internal/logging"
	"mediaextract/internal/media"
	"mediaextract/internal/services"
	"mediaextract/internal/services/llm"
)

const systemPrompt = "You are an assistant that extracts structured media information (movies, TV shows, or books) " +
	"from noisy OCR text. Always return a valid JSON array of objects."

const userPromptTemplate = `You will be given text extracted from an image or typed by a user. Your task is to:

1. Detect every movie, TV show, or book the text mentions. The text may mention several, or a mix of kinds.
2. Extract the exact title of each one as it appears, preserving casing and punctuation.
3. Set "kind" to exactly one of "movie", "tv", or "book".
4. When a title exists as more than one kind (for example "The Lord of the Rings"), decide from context. Never refuse; make your best guess.
5. For movies and TV shows include "year" as an integer when the text gives or strongly implies it.
6. For books include "author" when the text names one.

Respond with a raw JSON array only: no prose, no markdown, no code fences. Use this shape:
[{"kind": "movie", "title": "<title>", "year": 1999}, {"kind": "book", "title": "<title>", "author": "<author>"}]
If nothing qualifies, respond with [].

The text starts below:

%s`

// Completer is the chat-completion operation the classifier needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Classifier turns free text into raw candidate records via an LLM.
type Classifier struct {
	client Completer
	logger *slog.Logger
}

// New builds a Classifier around client.
func New(client Completer, logger *slog.Logger) *Classifier {
	return &Classifier{
		client: client,
		logger: logging.NewComponentLogger(logger, "classifier"),
	}
}

// Prompt renders the user prompt for text.
func Prompt(text string) string {
	return fmt.Sprintf(userPromptTemplate, text)
}

// Classify returns the model's candidate records without validating them.
// Any failure is a *media.PipelineError: transport faults carry no raw
// payload, unparseable output carries the model text as raw.
func (c *Classifier) Classify(ctx context.Context, text string) ([]json.RawMessage, error) {
	if c == nil || c.client == nil {
		return nil, media.NewPipelineError(media.StageClassify, "classifier is not configured", nil,
			services.Wrap(services.ErrConfiguration, "classifier", "classify", "no llm client", nil))
	}
	ctx = services.WithStage(ctx, media.StageClassify)
	logger := logging.WithContext(ctx, c.logger)

	content, err := c.client.Complete(ctx, systemPrompt, Prompt(text))
	if err != nil {
		logging.ErrorWithContext(logger, "classification request failed", "classifier_request",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check OpenRouter key, model, and network"),
		)
		return nil, media.NewPipelineError(media.StageClassify, "LLM error: "+err.Error(), nil, err)
	}

	records, err := Parse(content)
	if err != nil {
		logging.ErrorWithContext(logger, "classifier returned malformed JSON", "classifier_parse",
			logging.Error(err),
			logging.String("snippet", llm.Snippet(content)),
			logging.String(logging.FieldErrorHint, "model ignored the JSON array instruction"),
		)
		return nil, media.NewPipelineError(media.StageClassify, "classifier returned malformed JSON", content, err)
	}
	logger.Info("classification complete",
		logging.String(logging.FieldEventType, "classifier_complete"),
		logging.Int("candidate_count", len(records)),
	)
	return records, nil
}

// ErrNotArray reports a reply that parsed as JSON but is not an array.
var ErrNotArray = errors.New("classifier reply is not a JSON array")

// Parse strips code fences and decodes content as a JSON array. Anything
// other than an array, including a lone object, is rejected.
func Parse(content string) ([]json.RawMessage, error) {
	body := llm.StripCodeFence(content)
	if !strings.HasPrefix(body, "[") {
		if json.Valid([]byte(body)) {
			return nil, services.Wrap(services.ErrMalformedResponse, "classifier", "parse", "", ErrNotArray)
		}
	}
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, "classifier", "parse", "decode array", err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

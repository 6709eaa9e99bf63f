package media

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCandidate marks classifier items that fail schema validation.
var ErrInvalidCandidate = errors.New("invalid candidate")

const maxCandidateYear = 9999

// Candidate is a validated media item extracted by the classifier.
type Candidate struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	// Author is only meaningful for books.
	Author string `json:"author,omitempty"`
	// Year is zero when unknown. Only meaningful for movies and tv.
	Year int `json:"year,omitempty"`
}

type rawCandidate struct {
	Kind   json.RawMessage `json:"kind"`
	Type   json.RawMessage `json:"type"`
	Title  json.RawMessage `json:"title"`
	Author json.RawMessage `json:"author"`
	Year   json.RawMessage `json:"year"`
}

// ParseCandidate validates one raw classifier record. The record must be a JSON
// object with a string title and a kind of movie, tv, or book. The legacy
// "type" key is accepted when "kind" is absent. Optional fields that cannot be
// interpreted are ignored rather than failing the record.
func ParseCandidate(raw json.RawMessage) (Candidate, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Candidate{}, fmt.Errorf("%w: record is not an object", ErrInvalidCandidate)
	}
	var fields rawCandidate
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Candidate{}, fmt.Errorf("%w: decode record: %v", ErrInvalidCandidate, err)
	}

	kindRaw := fields.Kind
	if isAbsent(kindRaw) {
		kindRaw = fields.Type
	}
	kindValue, ok := decodeString(kindRaw)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: kind missing or not a string", ErrInvalidCandidate)
	}
	kind, ok := ParseKind(kindValue)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: unsupported kind %q", ErrInvalidCandidate, kindValue)
	}

	title, ok := decodeString(fields.Title)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: title missing or not a string", ErrInvalidCandidate)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Candidate{}, fmt.Errorf("%w: title is empty", ErrInvalidCandidate)
	}

	candidate := Candidate{Kind: kind, Title: title}
	if author, ok := decodeString(fields.Author); ok {
		candidate.Author = strings.TrimSpace(author)
	}
	if year, ok := decodeYear(fields.Year); ok {
		candidate.Year = year
	}
	return candidate, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

// decodeYear accepts integral JSON numbers and digit-only strings.
func decodeYear(raw json.RawMessage) (int, bool) {
	if isAbsent(raw) {
		return 0, false
	}
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		if number != math.Trunc(number) || number <= 0 || number > maxCandidateYear {
			return 0, false
		}
		return int(number), true
	}
	text, ok := decodeString(raw)
	if !ok {
		return 0, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || year <= 0 || year > maxCandidateYear {
		return 0, false
	}
	return year, true
}

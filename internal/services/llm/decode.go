package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeLLMJSON decodes JSON from an LLM response, tolerating code fences and
// prose around a single JSON object or array.
func DecodeLLMJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}
	sanitized := extractJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, summarizePayloadSnippet(trimmed))
	}
	if err := json.Unmarshal([]byte(sanitized), target); err != nil {
		return fmt.Errorf("%w (sanitized payload snippet: %s)", err, summarizePayloadSnippet(sanitized))
	}
	return nil
}

func extractJSONPayload(content string) string {
	trimmed := StripCodeFence(content)
	if trimmed == "" || trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(trimmed, pair[0])
		end := strings.LastIndex(trimmed, pair[1])
		if start >= 0 && end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

// StripCodeFence removes a leading ``` marker (with an optional language tag
// such as json or javascript) and a trailing ``` marker from a model reply.
// Each marker is stripped independently. Anything else is returned trimmed
// but otherwise untouched, so prose around the payload still fails a strict
// parse.
func StripCodeFence(content string) string {
	body := strings.TrimSpace(content)
	if rest, ok := strings.CutPrefix(body, "```"); ok {
		body = dropLanguageTag(rest)
	}
	if rest, ok := strings.CutSuffix(body, "```"); ok {
		body = rest
	}
	return strings.TrimSpace(body)
}

// dropLanguageTag removes an identifier directly after an opening fence when
// whitespace or the end of input follows it.
func dropLanguageTag(body string) string {
	body = strings.TrimLeft(body, " \t")
	end := strings.IndexFunc(body, func(r rune) bool { return !isTagRune(r) })
	switch {
	case end == 0:
		return body
	case end < 0:
		return ""
	}
	if next := body[end]; next == ' ' || next == '\t' || next == '\r' || next == '\n' {
		return body[end:]
	}
	return body
}

func isTagRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
		r == '_' || r == '+' || r == '-'
}

// Snippet returns a single-line, length-capped rendering of a model reply for
// logs and error messages.
func Snippet(content string) string {
	return summarizePayloadSnippet(content)
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

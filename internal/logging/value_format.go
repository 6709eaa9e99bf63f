package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// maxConsoleValue bounds a single rendered value on the console. Raw model
// output and OCR text can run to kilobytes; the JSON handler keeps them whole.
const maxConsoleValue = 240

// attrString renders v without quoting, for subject fields in the header.
func attrString(v slog.Value) string {
	return clip(rawValue(v.Resolve()))
}

// formatValue renders v for the key=value tail, quoting when the text would
// otherwise be ambiguous.
func formatValue(v slog.Value) string {
	s := clip(rawValue(v.Resolve()))
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func rawValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		switch val := v.Any().(type) {
		case error:
			return val.Error()
		case []byte:
			return string(val)
		default:
			return fmt.Sprint(val)
		}
	default:
		return v.String()
	}
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxConsoleValue {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxConsoleValue]) + "…"
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}

package main

import (
	"encoding/json"
	"strings"
	"testing"

	"mediaextract/internal/catalog/tmdb"
	"mediaextract/internal/media"
	"mediaextract/internal/testsupport"
)

func TestExtractPrintsTable(t *testing.T) {
	env := setupCLITestEnv(t)
	env.upstream.OCRText = "THE MATRIX"
	env.upstream.LLMContent = `[{"kind":"movie","title":"The Matrix","year":1999}]`
	env.upstream.WikiTitles["The Matrix film"] = []string{"The Matrix", "The Matrix Reloaded"}
	env.upstream.Movies["The Matrix"] = []tmdb.Result{{Title: "The Matrix", ReleaseDate: "1999-03-30", Overview: "Neo wakes up."}}

	image := testsupport.WriteImage(t, "poster.png")
	out, _, err := runCLI(t, []string{"extract", "--image", image}, env.configPath)
	if err != nil {
		t.Fatalf("extract returned error: %v", err)
	}
	requireContains(t, out, "The Matrix")
	requireContains(t, out, "1999-03-30")
	requireContains(t, out, "Neo wakes up.")
	if env.upstream.Calls(testsupport.ServiceOCR) != 1 {
		t.Fatalf("expected one OCR call, got %d", env.upstream.Calls(testsupport.ServiceOCR))
	}
}

func TestExtractQueryJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.upstream.LLMContent = `[{"kind":"tv","title":"Severance"},{"kind":"podcast","title":"x"}]`
	env.upstream.Shows["Severance"] = []tmdb.Result{{Name: "Severance", FirstAirDate: "2022-02-18"}}

	out, _, err := runCLI(t, []string{"extract", "--query", "severance", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("extract returned error: %v", err)
	}
	var records []media.Metadata
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	want := media.Metadata{Title: "Severance", Type: media.KindTV, Year: "2022-02-18"}
	if len(records) != 1 || records[0] != want {
		t.Fatalf("unexpected records: %+v", records)
	}
	if env.upstream.Calls(testsupport.ServiceOCR) != 0 {
		t.Fatalf("query-only extract should not call OCR")
	}
}

func TestExtractVerboseListsDiagnostics(t *testing.T) {
	env := setupCLITestEnv(t)
	env.upstream.LLMContent = `[{"kind":"podcast","title":"Serial"}]`

	out, _, err := runCLI(t, []string{"extract", "--query", "serial", "--verbose"}, env.configPath)
	if err != nil {
		t.Fatalf("extract returned error: %v", err)
	}
	requireContains(t, out, "No media found")
	requireContains(t, out, "Dropped candidates (1)")
	requireContains(t, out, "podcast")
}

func TestExtractClassifierFailureExitsNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	env.upstream.LLMContent = "I could not find any media."

	out, _, err := runCLI(t, []string{"extract", "--query", "hello", "--json"}, env.configPath)
	if err == nil {
		t.Fatal("expected malformed classifier output to fail the command")
	}
	var body map[string]any
	if jsonErr := json.Unmarshal([]byte(out), &body); jsonErr != nil {
		t.Fatalf("decode error body %q: %v", out, jsonErr)
	}
	if body["error"] != "classifier returned malformed JSON" {
		t.Fatalf("unexpected error body: %+v", body)
	}
	if body["raw"] != "I could not find any media." {
		t.Fatalf("expected raw classifier content, got %+v", body)
	}
}

func TestExtractRequiresInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"extract"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--image or --query") {
		t.Fatalf("expected missing input error, got %v", err)
	}
	if env.upstream.TotalCalls() != 0 {
		t.Fatalf("no upstream calls expected, got %d", env.upstream.TotalCalls())
	}
}

func TestExtractRejectsMissingImage(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"extract", "--image", "/does/not/exist.png"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "read image") {
		t.Fatalf("expected read image error, got %v", err)
	}
}

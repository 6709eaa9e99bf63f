package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"mediaextract/internal/media"
	"mediaextract/internal/pipeline"
	"mediaextract/internal/services"
)

type stubRunner struct {
	result pipeline.Result
	err    error
	inputs []pipeline.Input
	ctxIDs []string
}

func (s *stubRunner) Run(ctx context.Context, in pipeline.Input) (pipeline.Result, error) {
	s.inputs = append(s.inputs, in)
	if id, ok := services.RequestIDFromContext(ctx); ok {
		s.ctxIDs = append(s.ctxIDs, id)
	}
	return s.result, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartBody(t *testing.T, query string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if query != "" {
		if err := writer.WriteField("query", query); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("file", "cover.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func doExtract(t *testing.T, router http.Handler, path, query string, image []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, query, image)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := NewRouter(&stubRunner{}, Options{APIKey: "secret"}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestExtractRejectsEmptyInputWithoutRunning(t *testing.T) {
	runner := &stubRunner{}
	router := NewRouter(runner, Options{}, nil)

	rec := doExtract(t, router, "/extract", "", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(runner.inputs) != 0 {
		t.Fatal("pipeline must not run for empty input")
	}

	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bodiless request, got %d", rec.Code)
	}
}

func TestExtractReturnsRecords(t *testing.T) {
	runner := &stubRunner{result: pipeline.Result{Records: []media.Metadata{
		{Title: "Dune", Type: media.KindBook, Author: "Frank Herbert"},
	}}}
	router := NewRouter(runner, Options{}, nil)

	rec := doExtract(t, router, "/api/extract", "dune", []byte("png"), map[string]string{headerRequestID: "req-123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var records []map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := map[string]string{"title": "Dune", "type": "book", "author": "Frank Herbert", "year": "", "description": ""}
	if len(records) != 1 || len(records[0]) != len(want) {
		t.Fatalf("unexpected records %v", records)
	}
	for k, v := range want {
		if records[0][k] != v {
			t.Fatalf("field %s: got %q want %q", k, records[0][k], v)
		}
	}
	if len(runner.inputs) != 1 || runner.inputs[0].Query != "dune" || string(runner.inputs[0].Image) != "png" {
		t.Fatalf("unexpected pipeline input %+v", runner.inputs)
	}
	if rec.Header().Get(headerRequestID) != "req-123" || runner.ctxIDs[0] != "req-123" {
		t.Fatalf("request id not propagated: header=%q ctx=%v", rec.Header().Get(headerRequestID), runner.ctxIDs)
	}
}

func TestExtractQueryFromURLAndEmptyList(t *testing.T) {
	runner := &stubRunner{}
	router := NewRouter(runner, Options{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/extract?query=heat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected 200 [], got %d %s", rec.Code, rec.Body.String())
	}
	if runner.inputs[0].Query != "heat" {
		t.Fatalf("unexpected query %q", runner.inputs[0].Query)
	}
}

func TestExtractUploadLimit(t *testing.T) {
	runner := &stubRunner{}
	router := NewRouter(runner, Options{MaxUploadBytes: 1 << 10}, nil)

	rec := doExtract(t, router, "/extract", "", bytes.Repeat([]byte("x"), 2<<10), nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "1.0 KiB upload limit") {
		t.Fatalf("expected humanized limit in body, got %s", rec.Body.String())
	}
	if len(runner.inputs) != 0 {
		t.Fatal("pipeline must not run for oversized upload")
	}
}

func TestExtractBatchFatalErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "malformed classifier output",
			err:        media.NewPipelineError(media.StageClassify, "classifier returned malformed JSON", "oops", services.ErrMalformedResponse),
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"classifier returned malformed JSON","raw":"oops"}`,
		},
		{
			name:       "ocr upstream",
			err:        media.NewPipelineError(media.StageOCR, "OCR failed with status code 500: boom", nil, services.ErrExternalService),
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"OCR failed with status code 500: boom"}`,
		},
		{
			name:       "missing key",
			err:        media.NewPipelineError(media.StageClassify, "LLM error: api key required", nil, services.ErrConfiguration),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"LLM error: api key required"}`,
		},
		{
			name:       "plain error",
			err:        errors.New("unexpected"),
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"unexpected"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&stubRunner{err: tt.err}, Options{}, nil)
			rec := doExtract(t, router, "/extract", "dune", nil, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if strings.TrimSpace(rec.Body.String()) != tt.wantBody {
				t.Fatalf("unexpected body %s", rec.Body.String())
			}
		})
	}
}

func TestExtractRequiresAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", map[string]string{headerAPIKey: "nope"}, http.StatusUnauthorized},
		{"header", map[string]string{headerAPIKey: "secret"}, http.StatusOK},
		{"bearer", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"basic", map[string]string{"Authorization": "Basic secret"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&stubRunner{}, Options{APIKey: "secret"}, nil)
			rec := doExtract(t, router, "/extract", "dune", nil, tt.headers)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(&stubRunner{}, Options{CORSOrigins: []string{"https://app.example.com"}}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/extract", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("unexpected allow origin %q (status %d)", got, rec.Code)
	}
}

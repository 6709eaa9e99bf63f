package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"mediaextract/internal/catalog/googlebooks"
	"mediaextract/internal/catalog/tmdb"
	"mediaextract/internal/config"
)

// Upstream names used with Calls.
const (
	ServiceOCR       = "ocr"
	ServiceLLM       = "llm"
	ServiceWikipedia = "wikipedia"
	ServiceTMDB      = "tmdb"
	ServiceBooks     = "books"
)

// Upstream is one httptest server standing in for every external API the
// pipeline calls. Fields may be changed between requests.
type Upstream struct {
	Server *httptest.Server

	mu sync.Mutex
	// OCRText is returned as the full text annotation.
	OCRText string
	// LLMContent is returned verbatim as the assistant message.
	LLMContent string
	// WikiTitles maps an srsearch query to result titles.
	WikiTitles map[string][]string
	// Movies and Shows map a TMDB query to results.
	Movies map[string][]tmdb.Result
	Shows  map[string][]tmdb.Result
	// Books maps a Google Books q parameter to volumes.
	Books map[string][]googlebooks.Volume

	calls map[string]int
}

// NewUpstream starts the fake server and registers cleanup.
func NewUpstream(t testing.TB) *Upstream {
	t.Helper()
	u := &Upstream{
		WikiTitles: map[string][]string{},
		Movies:     map[string][]tmdb.Result{},
		Shows:      map[string][]tmdb.Result{},
		Books:      map[string][]googlebooks.Volume{},
		calls:      map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/vision", u.handleVision)
	mux.HandleFunc("/llm", u.handleLLM)
	mux.HandleFunc("/wiki", u.handleWiki)
	mux.HandleFunc("/tmdb/search/movie", u.handleTMDB(func() map[string][]tmdb.Result { return u.Movies }))
	mux.HandleFunc("/tmdb/search/tv", u.handleTMDB(func() map[string][]tmdb.Result { return u.Shows }))
	mux.HandleFunc("/books", u.handleBooks)
	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Server.Close)
	return u
}

// Configure points every client section of cfg at the fake server.
func (u *Upstream) Configure(cfg *config.Config) {
	cfg.OCR.BaseURL = u.Server.URL + "/vision"
	cfg.LLM.BaseURL = u.Server.URL + "/llm"
	cfg.Wikipedia.BaseURL = u.Server.URL + "/wiki"
	cfg.TMDB.BaseURL = u.Server.URL + "/tmdb"
	cfg.Books.BaseURL = u.Server.URL + "/books"
}

// Calls reports how many requests a service has received.
func (u *Upstream) Calls(service string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[service]
}

// TotalCalls reports requests across every service.
func (u *Upstream) TotalCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	total := 0
	for _, n := range u.calls {
		total += n
	}
	return total
}

func (u *Upstream) record(service string) {
	u.mu.Lock()
	u.calls[service]++
	u.mu.Unlock()
}

func (u *Upstream) handleVision(w http.ResponseWriter, _ *http.Request) {
	u.record(ServiceOCR)
	u.mu.Lock()
	text := u.OCRText
	u.mu.Unlock()
	response := map[string]any{"responses": []map[string]any{{}}}
	if text != "" {
		response["responses"] = []map[string]any{{"fullTextAnnotation": map[string]string{"text": text}}}
	}
	writeJSON(w, response)
}

func (u *Upstream) handleLLM(w http.ResponseWriter, _ *http.Request) {
	u.record(ServiceLLM)
	u.mu.Lock()
	content := u.LLMContent
	u.mu.Unlock()
	writeJSON(w, map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"content": content}}},
	})
}

func (u *Upstream) handleWiki(w http.ResponseWriter, r *http.Request) {
	u.record(ServiceWikipedia)
	u.mu.Lock()
	titles := u.WikiTitles[r.URL.Query().Get("srsearch")]
	u.mu.Unlock()
	hits := make([]map[string]string, 0, len(titles))
	for _, title := range titles {
		hits = append(hits, map[string]string{"title": title})
	}
	writeJSON(w, map[string]any{"query": map[string]any{"search": hits}})
}

func (u *Upstream) handleTMDB(table func() map[string][]tmdb.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u.record(ServiceTMDB)
		u.mu.Lock()
		results := table()[r.URL.Query().Get("query")]
		u.mu.Unlock()
		if results == nil {
			results = []tmdb.Result{}
		}
		writeJSON(w, tmdb.Response{Page: 1, Results: results, TotalPages: 1, TotalResults: len(results)})
	}
}

func (u *Upstream) handleBooks(w http.ResponseWriter, r *http.Request) {
	u.record(ServiceBooks)
	u.mu.Lock()
	volumes := u.Books[strings.TrimSpace(r.URL.Query().Get("q"))]
	u.mu.Unlock()
	writeJSON(w, map[string]any{"totalItems": len(volumes), "items": volumes})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

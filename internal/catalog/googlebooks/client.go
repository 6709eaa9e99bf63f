package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediaextract/internal/services"
)

// DefaultBaseURL is the Google Books volumes endpoint.
const DefaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

// Volume is the subset of a Google Books volume the fetcher consumes.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo carries the bibliographic fields of a volume.
type VolumeInfo struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Query describes a volume search. Author, when set, is added as an
// inauthor: qualifier.
type Query struct {
	Title  string
	Author string
}

func (q Query) String() string {
	text := strings.TrimSpace(q.Title)
	if author := strings.TrimSpace(q.Author); author != "" {
		text += " inauthor:" + author
	}
	return text
}

// Client searches Google Books volumes.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default 10s request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates a Google Books client. The API key is optional; anonymous
// requests are accepted at a lower quota.
func New(apiKey, baseURL string, maxResults int, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the volumes matching the query in Google's relevance order.
func (c *Client) Search(ctx context.Context, query Query) ([]Volume, error) {
	text := query.String()
	if strings.TrimSpace(query.Title) == "" {
		return nil, services.Wrap(services.ErrValidation, "googlebooks", "search", "title must not be empty", nil)
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "googlebooks", "search", "parse url", err)
	}
	params := url.Values{}
	params.Set("q", text)
	params.Set("maxResults", strconv.Itoa(c.maxResults))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "googlebooks", "search", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		marker := services.ErrExternalService
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "googlebooks", "search", "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalService, "googlebooks", "search",
			fmt.Sprintf("returned %d", resp.StatusCode), nil)
	}
	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, "googlebooks", "search", "decode response", err)
	}
	if payload.Error != nil {
		return nil, services.Wrap(services.ErrExternalService, "googlebooks", "search", payload.Error.Message, nil)
	}
	return payload.Items, nil
}

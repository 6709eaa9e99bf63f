package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediaextract/internal/services"
)

// DefaultBaseURL is the Google Cloud Vision annotate endpoint.
const DefaultBaseURL = "https://vision.googleapis.com/v1/images:annotate"

const (
	defaultHTTPTimeout = 20 * time.Second
	featureType        = "TEXT_DETECTION"
	maxErrorBodyBytes  = 4 << 10
)

// Config captures the settings required to call the Vision API.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client performs text detection against Google Cloud Vision.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Vision OCR client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		httpClient: &http.Client{Timeout: timeout},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError describes an error reported by the Vision service. Raw holds the
// upstream payload when one was returned so callers can surface it.
type APIError struct {
	StatusCode int
	Message    string
	Raw        json.RawMessage
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("OCR failed with status code %d: %s", e.StatusCode, e.Message)
	}
	return "OCR failed: " + e.Message
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image struct {
		Content string `json:"content"`
	} `json:"image"`
	Features []feature `json:"features"`
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *statusPayload `json:"error"`
	} `json:"responses"`
	Error *statusPayload `json:"error"`
}

type statusPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ExtractText runs text detection on the image and returns the full text
// annotation. An image with no detectable text yields an empty string.
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", services.Wrap(services.ErrValidation, "ocr", "extract text", "image payload is empty", nil)
	}
	if c.apiKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "ocr", "extract text", "GOOGLE_VISION_API_KEY not set", nil)
	}

	var payload annotateRequest
	req := imageRequest{Features: []feature{{Type: featureType}}}
	req.Image.Content = base64.StdEncoding.EncodeToString(image)
	payload.Requests = []imageRequest{req}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "ocr", "encode request", "", err)
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "ocr", "parse base url", c.baseURL, err)
	}
	query := endpoint.Query()
	query.Set("key", c.apiKey)
	endpoint.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "ocr", "build request", "", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		marker := services.ErrExternalService
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return "", services.Wrap(marker, "ocr", "annotate", "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "ocr", "read response", "", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(raw) > maxErrorBodyBytes {
			raw = raw[:maxErrorBodyBytes]
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if json.Valid(raw) {
			apiErr.Raw = raw
		}
		return "", services.Wrap(services.ErrExternalService, "ocr", "annotate", "", apiErr)
	}

	var decoded annotateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", services.Wrap(services.ErrMalformedResponse, "ocr", "decode response", "", err)
	}
	if status := decoded.Error; status != nil {
		return "", services.Wrap(services.ErrExternalService, "ocr", "annotate", "",
			&APIError{Message: status.Message, Raw: raw})
	}
	if len(decoded.Responses) == 0 {
		return "", services.Wrap(services.ErrMalformedResponse, "ocr", "decode response", "no responses in payload",
			&APIError{Message: "unexpected payload shape", Raw: raw})
	}
	first := decoded.Responses[0]
	if first.Error != nil {
		return "", services.Wrap(services.ErrExternalService, "ocr", "annotate", "",
			&APIError{Message: first.Error.Message, Raw: raw})
	}
	if first.FullTextAnnotation == nil {
		return "", nil
	}
	return first.FullTextAnnotation.Text, nil
}

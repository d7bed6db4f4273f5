// Package detector talks to the remote PII detection service. The service
// owns detection and masking; this package only ships text or documents to
// it and decodes the entity records it returns.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gonkalabs/piiview/internal/entity"
)

// maxAttempts bounds how many endpoints a single call tries.
const maxAttempts = 3

// Client calls the detection service. Each call goes to a random configured
// endpoint and, on transport errors, is retried against another one.
type Client struct {
	endpoints []string
	http      *http.Client
}

// New creates a Client for the given base URLs
// (e.g. "http://127.0.0.1:8000"). timeout bounds each HTTP exchange.
func New(baseURLs []string, timeout time.Duration) *Client {
	eps := make([]string, 0, len(baseURLs))
	for _, u := range baseURLs {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u != "" {
			eps = append(eps, u)
		}
	}
	return &Client{
		endpoints: eps,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Endpoints returns the configured base URLs.
func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

type analyzeRequest struct {
	Text      string  `json:"text"`
	Threshold float64 `json:"threshold"`
}

type maskRequest struct {
	Text string `json:"text"`
}

type entitiesResponse struct {
	Entities []entity.Entity `json:"entities"`
}

type maskResponse struct {
	Masked string `json:"masked"`
}

// Analyze sends text to /analyze and returns the raw (unconsolidated)
// detections at or above threshold.
func (c *Client) Analyze(ctx context.Context, text string, threshold float64) ([]entity.Entity, error) {
	body, err := json.Marshal(analyzeRequest{Text: text, Threshold: threshold})
	if err != nil {
		return nil, fmt.Errorf("detector: analyze: marshal: %w", err)
	}
	var out entitiesResponse
	if err := c.do(ctx, "/analyze", "application/json", body, &out); err != nil {
		return nil, fmt.Errorf("detector: analyze: %w", err)
	}
	return out.Entities, nil
}

// Mask sends text to /mask and returns the service's masked rendition.
func (c *Client) Mask(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(maskRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("detector: mask: marshal: %w", err)
	}
	var out maskResponse
	if err := c.do(ctx, "/mask", "application/json", body, &out); err != nil {
		return "", fmt.Errorf("detector: mask: %w", err)
	}
	return out.Masked, nil
}

// AnalyzeDocument uploads a PDF to /upload-pdf as the multipart "file" field.
// The document is buffered so that a retry can resend it.
func (c *Client) AnalyzeDocument(ctx context.Context, filename string, r io.Reader) ([]entity.Entity, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("detector: upload: form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("detector: upload: read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("detector: upload: form: %w", err)
	}

	var out entitiesResponse
	if err := c.do(ctx, "/upload-pdf", mw.FormDataContentType(), buf.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("detector: upload: %w", err)
	}
	return out.Entities, nil
}

// do POSTs payload to path and decodes a JSON response into v.
// Transport failures move on to another endpoint; an HTTP error status or an
// undecodable body is returned as is.
func (c *Client) do(ctx context.Context, path, contentType string, payload []byte, v any) error {
	var lastErr error
	tried := map[string]bool{}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ep, err := c.pickEndpointExcluding(tried)
		if err != nil {
			return err
		}
		if tried[ep] {
			break
		}
		tried[ep] = true

		resp, err := c.post(ctx, ep+path, contentType, payload)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("detector: request failed, retrying with different endpoint", "attempt", attempt+1, "endpoint", ep, "err", err)
			lastErr = err
			continue
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return nil
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, url, contentType string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	slog.Debug("detector request", "url", url, "bytes", len(payload))
	return c.http.Do(req)
}

// pickEndpointExcluding returns a random endpoint not in the excluded set.
// Once every endpoint has been tried it returns one of them again, which the
// caller treats as exhaustion.
func (c *Client) pickEndpointExcluding(exclude map[string]bool) (string, error) {
	if len(c.endpoints) == 0 {
		return "", fmt.Errorf("no detector endpoints configured")
	}
	var candidates []string
	for _, ep := range c.endpoints {
		if !exclude[ep] {
			candidates = append(candidates, ep)
		}
	}
	if len(candidates) == 0 {
		return c.endpoints[rand.Intn(len(c.endpoints))], nil
	}
	return candidates[rand.Intn(len(candidates))], nil
}

// Package canvas is a client for the Canvas LMS REST API, covering the
// resources this toolchain synchronizes: courses, quizzes, question groups,
// questions, submissions, assignments, and wiki pages.
package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the UBC Canvas API root.
const DefaultBaseURL = "https://canvas.ubc.ca/api/v1"

// ErrNotFound indicates a requested object was not among the fetched results.
var ErrNotFound = errors.New("canvas: not found")

// HTTPError is returned for any non-2xx response. Calls are single-shot:
// an HTTPError aborts the current operation without retry.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("canvas: HTTP %d: %s", e.StatusCode, e.Body)
}

// Config carries what the client needs to reach Canvas.
type Config struct {
	BaseURL string
	Token   string
}

// Client issues bearer-token authenticated requests against the Canvas API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  zerolog.Logger
}

// New builds a Canvas client. The token is mandatory; the base URL defaults
// to DefaultBaseURL.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("canvas token must be provided")
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		logger:  logger.With().Str("component", "canvas_client").Logger(),
	}, nil
}

func (c *Client) do(ctx context.Context, method, url string, body any) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return resp, raw, nil
}

// Get walks a paginated endpoint and returns every page in server order.
// Pagination follows the Link response header: the walk ends when the
// response lacks a "current" or "last" relation, or when those two URLs are
// equal; otherwise it continues through the "next" relation. With
// stopAtFirst only the first page is fetched. Pages are raw JSON: arrays
// for listing endpoints, one object for single-resource endpoints.
func (c *Client) Get(ctx context.Context, path string, stopAtFirst bool) ([]json.RawMessage, error) {
	var pages []json.RawMessage

	url := c.baseURL + path
	for {
		resp, raw, err := c.do(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		pages = append(pages, json.RawMessage(raw))

		links := parseLinkHeader(resp.Header.Get("Link"))
		if stopAtFirst || links["current"] == "" || links["last"] == "" || links["current"] == links["last"] {
			break
		}
		next := links["next"]
		if next == "" {
			break
		}
		url = next
	}

	c.logger.Debug().Str("path", path).Int("pages", len(pages)).Msg("get")
	return pages, nil
}

// Put issues a PUT and returns the decoded response body, or nil when the
// server answers with no content.
func (c *Client) Put(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.mutate(ctx, http.MethodPut, path, body)
}

// Post issues a POST and returns the decoded response body, or nil when the
// server answers with no content.
func (c *Client) Post(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.mutate(ctx, http.MethodPost, path, body)
}

// Delete issues a DELETE and returns the decoded response body, or nil when
// the server answers with no content.
func (c *Client) Delete(ctx context.Context, path string) (map[string]any, error) {
	return c.mutate(ctx, http.MethodDelete, path, nil)
}

func (c *Client) mutate(ctx context.Context, method, path string, body any) (map[string]any, error) {
	resp, raw, err := c.do(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("mutate")
	return decoded, nil
}

// parseLinkHeader extracts rel -> URL pairs from an RFC 5988 Link header.
func parseLinkHeader(header string) map[string]string {
	links := make(map[string]string)
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		url := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, attr := range sections[1:] {
			attr = strings.TrimSpace(attr)
			if rel, ok := strings.CutPrefix(attr, `rel="`); ok {
				links[strings.TrimSuffix(rel, `"`)] = url
			}
		}
	}
	return links
}

// decodeList flattens pages of JSON arrays into their element objects.
func decodeList(pages []json.RawMessage) ([]map[string]any, error) {
	var out []map[string]any
	for _, page := range pages {
		var items []map[string]any
		if err := json.Unmarshal(page, &items); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		out = append(out, items...)
	}
	return out, nil
}

// decodeObject decodes a single-resource page.
func decodeObject(page json.RawMessage) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(page, &obj); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return obj, nil
}

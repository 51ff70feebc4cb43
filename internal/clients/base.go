package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/arwoh/storefront-go/internal/auth"
	"github.com/arwoh/storefront-go/internal/middleware"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 1 << 20

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

func NewClient(name string, baseURL string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}
}

// Do sends a raw request to path (relative to the base URL).
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	u := c.BaseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := auth.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	return c.HTTP.Do(req)
}

// DoJSON encodes in (when non-nil) as the request body, expects an envelope
// response and decodes its data into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.Name, err)
		}
		body = bytes.NewReader(buf)
	}

	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%w: %s %s %s: %w", ErrUnavailable, c.Name, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %w", ErrUnavailable, c.Name, err)
	}

	return decodeEnvelope(c.Name, resp.StatusCode, raw, out)
}

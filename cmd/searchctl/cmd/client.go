package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	chiTransport "github.com/kailas-cloud/mediasearch/internal/transport/chi"
)

var errTenantRequired = errors.New("tenant is required (use --tenant or MEDIASEARCH_TENANT)")

// apiClient is a thin JSON client for the mediasearch HTTP API.
type apiClient struct {
	base   string
	apiKey string
	http   *http.Client
}

func newAPIClient(opts *globalOptions) *apiClient {
	return &apiClient{
		base:   strings.TrimRight(opts.addr, "/"),
		apiKey: opts.apiKey,
		http:   &http.Client{Timeout: opts.timeout},
	}
}

func (c *apiClient) tenantPath(tenant, suffix string) (string, error) {
	if tenant == "" {
		return "", errTenantRequired
	}
	return "/api/v1/tenants/" + url.PathEscape(tenant) + suffix, nil
}

// do sends body as JSON and decodes a 2xx response into out.
// Health responses are decoded for 503 as well.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusServiceUnavailable {
		var e chiTransport.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			return resp.StatusCode, fmt.Errorf("server returned %d (%s): %s", resp.StatusCode, e.Code, e.Message)
		}
		return resp.StatusCode, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

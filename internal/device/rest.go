package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTReader is a Reader over the device's JSON management endpoint.
//
// Collections arrive as an object with an "items" array; List unwraps that so
// callers see either a single object or a plain array.
type RESTReader struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// RESTOption configures a RESTReader.
type RESTOption func(*RESTReader)

// WithBasicAuth sets credentials sent with every request.
func WithBasicAuth(username, password string) RESTOption {
	return func(r *RESTReader) {
		r.username = username
		r.password = password
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) RESTOption {
	return func(r *RESTReader) {
		r.client = client
	}
}

// NewRESTReader creates a Reader for the management endpoint at baseURL.
func NewRESTReader(baseURL string, opts ...RESTOption) *RESTReader {
	reader := &RESTReader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// List performs a single GET against path. When properties is non-empty a
// $select query parameter restricts the response to those properties.
func (r *RESTReader) List(ctx context.Context, path string, properties []string) (any, error) {
	requestURL := r.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(properties) > 0 {
		query := url.Values{}
		query.Set("$select", strings.Join(properties, ","))
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.username != "" {
		req.SetBasicAuth(r.username, r.password)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read of %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("read of %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response for %s: %w", path, err)
	}

	if object, ok := decoded.(map[string]any); ok {
		if items, ok := object["items"].([]any); ok {
			return items, nil
		}
	}
	return decoded, nil
}

// Package httpx holds the request plumbing shared by the providers that
// talk to vendor REST APIs directly.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// Do sends req and returns the response body. Any non-2xx status becomes an
// error carrying vendor, the status code and the body.
func Do(client *http.Client, vendor string, req *http.Request) ([]byte, http.Header, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s request failed: %w", vendor, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s response: %w", vendor, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.Header, fmt.Errorf("%s API request failed with status code: %d, body: %s", vendor, resp.StatusCode, string(body))
	}
	return body, resp.Header, nil
}

// PostJSON marshals payload (raw []byte is sent as-is) and posts it to url with headers.
func PostJSON(ctx context.Context, client *http.Client, vendor, url string, headers map[string]string, payload interface{}) ([]byte, http.Header, error) {
	var body []byte
	switch v := payload.(type) {
	case []byte:
		body = v
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode %s request: %w", vendor, err)
		}
		body = b
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return Do(client, vendor, req)
}

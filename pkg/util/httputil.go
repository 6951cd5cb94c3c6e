package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the timeout of the clients returned by
	// NewHTTPClient when none is given.
	DefaultTimeout = 30 * time.Second
)

// NewHTTPClient returns an http client with the given timeout, or
// DefaultTimeout if zero.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NewHTTPRequest runs a GET or POST request and returns status code and body
// of the response.
func NewHTTPRequest(
	ctx context.Context, client *http.Client,
	method, url, bodyString string, header map[string]string,
) (int, string, error) {
	var body io.Reader
	switch method {
	case http.MethodGet:
	case http.MethodPost:
		body = strings.NewReader(bodyString)
	default:
		return 0, "", fmt.Errorf("verb not supported %s", method)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, "", err
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return rs.StatusCode, string(bodyBytes), nil
}

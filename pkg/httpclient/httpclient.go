package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/pkg/token"
)

// ErrNotFound marks a legitimate absence response from a remote directory.
// Callers must treat it as an expected outcome, never as a failure.
var ErrNotFound = errors.New("resource not found")

// APIError is a non-success response from a remote directory, carrying as
// much diagnostic detail as the service provided so an operator can tell a
// missing permission from an outage.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote directory error: status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("remote directory error: status %d", e.StatusCode)
}

// odataError is the error envelope the directory services wrap failures in.
type odataError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client issues authenticated JSON requests against a remote directory API.
type Client struct {
	httpClient *http.Client
	tokens     token.Provider
	logger     zerolog.Logger
}

// New creates a Client backed by the given token provider.
func New(tokens token.Provider, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger,
	}
}

// DoJSON sends one authenticated request. body (when non-nil) is marshalled
// as JSON; out (when non-nil) receives the decoded response body. A 404 maps
// to ErrNotFound, any other non-2xx status to an *APIError.
func (c *Client) DoJSON(ctx context.Context, method, url, resource string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to serialize request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	bearer, err := c.tokens.Token(ctx, resource)
	if err != nil {
		return fmt.Errorf("failed to acquire access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, res.Body)
		return ErrNotFound
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var wrapped odataError
		if decodeErr := json.NewDecoder(res.Body).Decode(&wrapped); decodeErr == nil {
			apiErr.Code = wrapped.Error.Code
			apiErr.Message = wrapped.Error.Message
		}
		c.logger.Error().Int("status", res.StatusCode).Str("code", apiErr.Code).
			Str("url", url).Msg("Remote directory request failed")
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", url, err)
		}
	} else {
		io.Copy(io.Discard, res.Body)
	}

	return nil
}

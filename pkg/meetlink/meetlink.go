// Package meetlink calls the meeting-link provider function to create a
// third-party join link for a scheduled meeting.
package meetlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Request describes the meeting to create a join link for.
type Request struct {
	Subject   string    `json:"subject"`
	Attendees []string  `json:"attendees"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Timezone  string    `json:"timezone"`
}

type response struct {
	JoinURL string `json:"join_url"`
	Error   string `json:"error,omitempty"`
}

// Client talks to the link provider endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	retryDelay time.Duration
}

// New builds a client for the given function endpoint.
func New(endpoint, token string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Create invokes the provider and returns the join URL. Rate limits and
// server errors are retried with exponential backoff; other client errors
// are not.
func (c *Client) Create(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding link request: %w", err)
	}

	var body []byte
	var lastErr error
	err = retry.Do(
		func() error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			httpReq.Header.Set("Content-Type", "application/json")
			if c.token != "" {
				httpReq.Header.Set("Authorization", "Bearer "+c.token)
			}

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				lastErr = err
				return err
			}
			defer resp.Body.Close() //nolint:errcheck // read-only body

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				lastErr = err
				return err
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
				c.logger.Debug("retryable link provider error",
					"status", resp.StatusCode,
					"body", string(data))
				return lastErr
			}
			if resp.StatusCode >= 400 {
				lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
				return retry.Unrecoverable(lastErr)
			}

			body = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(time.Minute),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying link creation",
				"attempt", n+1,
				"subject", req.Subject,
				"error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("creating join link: %w", lastErr)
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding link response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("link provider: %s", out.Error)
	}
	if out.JoinURL == "" {
		return "", fmt.Errorf("link provider returned no join_url")
	}
	return out.JoinURL, nil
}

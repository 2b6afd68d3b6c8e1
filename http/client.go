package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/chatvault"
)

// Ensure Client implements chatvault.Saver at compile time.
var _ chatvault.Saver = (*Client)(nil)

// Client sends save requests to a coordinator Server.
type Client struct {
	baseURL string
	client  *http.Client

	// RetryDelays are the waits before each retry of a transient failure.
	RetryDelays []time.Duration
}

// NewClient creates a client for the coordinator at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		client:      &http.Client{Timeout: 2 * time.Minute},
		RetryDelays: DefaultRetryDelays(),
	}
}

// Save posts req to the coordinator. Channel failures are retried; when
// retries are exhausted an unsuccessful outcome is returned.
func (c *Client) Save(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
	body, err := json.Marshal(req)
	if err != nil {
		return chatvault.FailedOutcome("", fmt.Errorf("marshal save request: %w", err))
	}
	gesture := chatvault.HasUserGesture(ctx)

	out, err := withRetry(ctx, c.RetryDelays, func(ctx context.Context) (chatvault.SaveOutcome, error) {
		return c.post(ctx, body, gesture)
	})
	if err != nil {
		if isTransient(err) {
			err = chatvault.Errorf(chatvault.EUNAVAILABLE, "coordinator unreachable: %v", err)
		}
		return chatvault.FailedOutcome("", err)
	}
	return out
}

// Health reports whether the coordinator answers.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return chatvault.Errorf(chatvault.EUNAVAILABLE, "coordinator unreachable: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return chatvault.Errorf(chatvault.EUNAVAILABLE, "coordinator health: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte, gesture bool) (chatvault.SaveOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/save", bytes.NewReader(body))
	if err != nil {
		return chatvault.SaveOutcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if gesture {
		req.Header.Set(GestureHeader, "1")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return chatvault.SaveOutcome{}, ctx.Err()
		}
		return chatvault.SaveOutcome{}, &transientError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return chatvault.SaveOutcome{}, &transientError{fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var out chatvault.SaveOutcome
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chatvault.SaveOutcome{}, &transientError{fmt.Errorf("decode outcome: %w", err)}
	}
	return out, nil
}

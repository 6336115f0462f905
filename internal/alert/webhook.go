package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultTimeout = 5 * time.Second
	maxAttempts    = 3
)

// retryBackoff is the base delay between attempts; attempt n waits n times it.
var retryBackoff = time.Second

// errPermanent marks a delivery the endpoint refused; it is not retried.
var errPermanent = errors.New("webhook rejected")

// Send posts event to cfg.URL with client, retrying 5xx answers and transport
// errors. It stops as soon as ctx is done.
func Send(ctx context.Context, client *http.Client, cfg Config, event Event) error {
	body, err := FormatPayload(cfg.Format, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook abandoned after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}

		lastErr = post(ctx, client, cfg, body)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, errPermanent) || ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("webhook failed after %d attempts: %w", maxAttempts, lastErr)
}

// post makes one delivery attempt.
func post(ctx context.Context, client *http.Client, cfg Config, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", errPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: HTTP %d", errPermanent, resp.StatusCode)
	default:
		return fmt.Errorf("webhook server error: HTTP %d", resp.StatusCode)
	}
}

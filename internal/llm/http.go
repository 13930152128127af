package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// StatusError is a completed exchange with a non-2xx status.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recognizer endpoint returned %d %s", e.Status, http.StatusText(e.Status))
}

// Temporary reports whether retrying the same request may succeed.
func (e *StatusError) Temporary() bool {
	switch e.Status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

const (
	sendAttempts = 3
	retryBackoff = 250 * time.Millisecond
)

// SendJSON POSTs body as JSON to url and returns the raw response body and status.
// Rate-limit and gateway statuses are retried with linear backoff; anything else
// non-2xx is returned as a *StatusError alongside the body.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	reqID := uuid.NewString()
	var (
		raw    []byte
		status int
	)
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		raw, status, err = post(ctx, client, url, payload, headers, reqID, logger)
		var se *StatusError
		if err == nil || !errors.As(err, &se) || !se.Temporary() || attempt == sendAttempts {
			break
		}
		wait := time.Duration(attempt) * retryBackoff
		logger.Warn("llm.http.retry", "req_id", reqID, "status", status, "attempt", attempt, "wait_ms", wait.Milliseconds())
		select {
		case <-ctx.Done():
			return raw, status, ctx.Err()
		case <-time.After(wait):
		}
	}
	return raw, status, err
}

func post(ctx context.Context, client *http.Client, url string, payload []byte, headers map[string]string, reqID string, logger *slog.Logger) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	logger.Debug("llm.http.request", "req_id", reqID, "url", url, "bytes", len(payload))
	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_failed", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("llm.http.close_failed", "req_id", reqID, "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	logger.Debug("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, &StatusError{Status: resp.StatusCode, Body: raw}
	}
	return raw, resp.StatusCode, nil
}

package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// WebhookSender posts alerts to a webhook URL.
// Nil-safe: when not configured, Send is a no-op.
type WebhookSender struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewWebhookSender creates a sender limited to perMinute posts.
// Returns nil if url is empty (alerts disabled).
func NewWebhookSender(url string, perMinute int, logger *slog.Logger) *WebhookSender {
	if url == "" {
		return nil
	}
	if perMinute < 1 {
		perMinute = 1
	}
	return &WebhookSender{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
		logger:     logger,
	}
}

// Send posts one alert. Any non-2xx response is an error.
func (s *WebhookSender) Send(ctx context.Context, alert Alert) error {
	if s == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}

package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pusher delivers a push notification to one device token.
type Pusher interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

// PushMessage is the JSON body posted to the push gateway.
type PushMessage struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// WebhookPusher posts push messages to an HTTP gateway.
type WebhookPusher struct {
	url    string
	client *http.Client
}

// NewWebhookPusher builds a pusher posting to url.
func NewWebhookPusher(url string, client *http.Client) *WebhookPusher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookPusher{url: url, client: client}
}

func (p *WebhookPusher) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	payload, err := json.Marshal(PushMessage{Token: token, Title: title, Body: body, Data: data})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// StatusError is a non-2xx response from the push gateway.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push gateway responded %d", e.StatusCode)
}

// Retryable reports whether the response may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// LogPusher only logs outgoing pushes. Used when no gateway is configured.
type LogPusher struct {
	logger *zap.Logger
}

func NewLogPusher(logger *zap.Logger) *LogPusher {
	return &LogPusher{logger: logger.Named("pusher")}
}

func (p *LogPusher) SendPush(_ context.Context, _, title, body string, data map[string]string) error {
	p.logger.Info("push", zap.String("title", title), zap.String("body", body), zap.Any("data", data))
	return nil
}

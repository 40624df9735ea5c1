package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const webhookTimeout = 5 * time.Second

// WebhookEvent is the JSON payload sent to webhook URLs.
type WebhookEvent struct {
	Event     string        `json:"event"`
	Timestamp time.Time     `json:"timestamp"`
	Journal   string        `json:"journal,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Stats     *WebhookStats `json:"stats,omitempty"`
}

// WebhookStats summarizes the journal in webhook payloads.
type WebhookStats struct {
	Total  int            `json:"total"`
	Levels map[string]int `json:"levels,omitempty"`
}

// ParseWebhookAuth splits an auth spec of the form "mode:value". Supported
// modes are "bearer" (Authorization header) and "hmac-sha256" (payload
// signature in X-Logshelf-Signature). An empty spec disables auth.
func ParseWebhookAuth(spec string) (string, string, error) {
	if spec == "" {
		return "", "", nil
	}
	mode, value, ok := strings.Cut(spec, ":")
	if !ok || mode == "" || value == "" {
		return "", "", fmt.Errorf("invalid webhook auth %q: want mode:value", spec)
	}
	switch mode {
	case "bearer", "hmac-sha256":
	default:
		return "", "", fmt.Errorf("unsupported webhook auth mode %q", mode)
	}
	return mode, value, nil
}

// WebhookDispatcher sends fire-and-forget HTTP POST notifications.
type WebhookDispatcher struct {
	urls     []string
	events   map[string]bool
	authMode string
	authVal  string
	client   *http.Client
}

// NewWebhookDispatcher creates a dispatcher for the given URLs and event
// filter. If eventFilter is empty, all events are sent. A nil dispatcher
// is returned when urls is empty; Fire on it is a no-op.
func NewWebhookDispatcher(urls []string, eventFilter []string, authSpec string) (*WebhookDispatcher, error) {
	mode, value, err := ParseWebhookAuth(authSpec)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, nil
	}

	events := make(map[string]bool)
	for _, e := range eventFilter {
		events[e] = true
	}

	return &WebhookDispatcher{
		urls:     urls,
		events:   events,
		authMode: mode,
		authVal:  value,
		client:   &http.Client{Timeout: webhookTimeout},
	}, nil
}

// Fire sends the event to all configured webhooks in background goroutines.
// It returns immediately (non-blocking). Errors are silently dropped.
func (d *WebhookDispatcher) Fire(evt WebhookEvent) {
	if d == nil || len(d.urls) == 0 {
		return
	}

	if len(d.events) > 0 && !d.events[evt.Event] {
		return
	}

	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return
	}

	for _, url := range d.urls {
		go d.post(url, data)
	}
}

func (d *WebhookDispatcher) post(url string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	switch d.authMode {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+d.authVal)
	case "hmac-sha256":
		mac := hmac.New(sha256.New, []byte(d.authVal))
		_, _ = mac.Write(data)
		req.Header.Set("X-Logshelf-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

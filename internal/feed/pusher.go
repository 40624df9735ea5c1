// Package feed pushes journal entries to a running logshelf server over
// its HTTP API, batching them as JSON lines with retry and backoff.
package feed

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/logshelf/logshelf/internal/journal"
)

const (
	maxBatchBytes     = 1 << 20 // 1MB, well under the server's request cap
	defaultMaxRetries = 3
	defaultMaxBackoff = 30 * time.Second
	pushPath          = "/api/entries"
)

// ErrBatchTooLarge is returned when a serialized batch exceeds the size limit.
var ErrBatchTooLarge = fmt.Errorf("batch exceeds %d byte limit", maxBatchBytes)

// Pusher sends journal entries to a logshelf server.
type Pusher struct {
	target     string
	client     *http.Client
	maxRetries int
	maxBackoff time.Duration
	onRetry    func()
}

// NewPusher creates a Pusher targeting the given server address.
// Targets prefixed with https:// use TLS; plain host:port defaults to http://.
func NewPusher(target string) *Pusher {
	return NewPusherWithClient(target, &http.Client{Timeout: 10 * time.Second})
}

// NewTLSPusher creates a Pusher with TLS support.
// Set skipVerify to true for self-signed certificates.
func NewTLSPusher(target string, skipVerify bool) *Pusher {
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: skipVerify, //nolint:gosec // user-controlled flag for self-signed certs
			},
		},
	}
	return NewPusherWithClient(target, client)
}

// NewPusherWithClient creates a Pusher with a custom HTTP client (useful for tests).
func NewPusherWithClient(target string, client *http.Client) *Pusher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Pusher{
		target:     target,
		client:     client,
		maxRetries: defaultMaxRetries,
		maxBackoff: defaultMaxBackoff,
	}
}

// SetMaxRetries sets the maximum number of attempts per push.
func (p *Pusher) SetMaxRetries(n int) { p.maxRetries = n }

// SetMaxBackoff sets the maximum backoff duration between retries.
func (p *Pusher) SetMaxBackoff(d time.Duration) { p.maxBackoff = d }

// SetOnRetry sets a callback invoked on each retry attempt.
func (p *Pusher) SetOnRetry(fn func()) { p.onRetry = fn }

// EncodeBatch serializes entries as newline-delimited JSON, the body format
// POST /api/entries accepts.
func EncodeBatch(entries []journal.Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encode entry: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Push sends a batch of entries to the server.
// Returns ErrBatchTooLarge if the serialized batch exceeds 1MB.
// Retries transient errors up to 3 times with exponential backoff;
// 4xx responses are not retried.
func (p *Pusher) Push(ctx context.Context, entries []journal.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	body, err := EncodeBatch(entries)
	if err != nil {
		return err
	}
	if len(body) > maxBatchBytes {
		return ErrBatchTooLarge
	}

	url := TargetURL(p.target, pushPath)

	var lastErr error
	for attempt := range p.maxRetries {
		if err := ctx.Err(); err != nil {
			return err
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/x-ndjson")

		resp, err := p.client.Do(httpReq)
		if err != nil {
			lastErr = err
			if attempt < p.maxRetries-1 {
				if p.onRetry != nil {
					p.onRetry()
				}
				backoff(ctx, attempt, p.maxBackoff)
			}
			continue
		}
		_ = resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("push failed: HTTP %d", resp.StatusCode)

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return lastErr // client error, no retry
		}

		if attempt < p.maxRetries-1 {
			if p.onRetry != nil {
				p.onRetry()
			}
			backoff(ctx, attempt, p.maxBackoff)
		}
	}

	return lastErr
}

// TargetURL constructs a URL for the given target and path.
// Targets with an explicit scheme (http:// or https://) are used as-is.
// Plain host:port targets default to http://.
func TargetURL(target, path string) string {
	if strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "http://") {
		return strings.TrimRight(target, "/") + path
	}
	return "http://" + target + path
}

func backoff(ctx context.Context, attempt int, maxBackoff time.Duration) {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > maxBackoff {
		d = maxBackoff
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

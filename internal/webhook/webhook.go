// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package webhook relays content lifecycle events to an external endpoint.
// Each request body is signed with HMAC-SHA256 so receivers can verify it.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"resty.dev/v3"

	"revista/internal/metrics"
	"revista/internal/models"
)

// SignatureHeader carries "sha256=<hex>" of the raw request body.
const SignatureHeader = "X-Revista-Signature"

// Event names sent in the payload.
const (
	EventPublished   = "content.published"
	EventUnpublished = "content.unpublished"
	EventDeleted     = "content.deleted"
)

// Payload is the JSON body posted for every event.
type Payload struct {
	Event      string    `json:"event"`
	ContentID  uuid.UUID `json:"content_id"`
	Type       string    `json:"type"`
	Slug       string    `json:"slug"`
	Locale     string    `json:"locale"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier posts signed events. A nil *Notifier is valid and does nothing,
// so callers don't need to check whether webhooks are configured.
type Notifier struct {
	http   *resty.Client
	url    string
	secret []byte
	now    func() time.Time
}

// New returns a Notifier for url, or nil when url is empty.
func New(url, secret string) *Notifier {
	if url == "" {
		return nil
	}
	c := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetAllowNonIdempotentRetry(true).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "revista-webhook/1")
	return &Notifier{http: c, url: url, secret: []byte(secret), now: time.Now}
}

// Close releases the underlying HTTP client resources.
func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	return n.http.Close()
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body under secret.
func Verify(secret, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Notify sends event for c. Transient failures are retried; the final
// error is returned for the caller to log.
func (n *Notifier) Notify(ctx context.Context, event string, c *models.Content) error {
	if n == nil {
		return nil
	}
	body, err := json.Marshal(Payload{
		Event:      event,
		ContentID:  c.ID,
		Type:       string(c.Type),
		Slug:       c.Slug,
		Locale:     c.Locale,
		OccurredAt: n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	resp, err := n.http.R().
		SetContext(ctx).
		SetHeader(SignatureHeader, Sign(n.secret, body)).
		SetBody(body).
		Post(n.url)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(event, "error").Inc()
		return fmt.Errorf("deliver webhook %s: %w", event, err)
	}
	if resp.IsError() {
		metrics.WebhookDeliveries.WithLabelValues(event, "rejected").Inc()
		return fmt.Errorf("deliver webhook %s: status %d", event, resp.StatusCode())
	}
	metrics.WebhookDeliveries.WithLabelValues(event, "ok").Inc()
	return nil
}

// NotifyAsync sends event in the background with its own timeout so the
// admin request is not held up by a slow receiver.
func (n *Notifier) NotifyAsync(event string, c *models.Content) {
	if n == nil {
		return
	}
	snapshot := *c
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := n.Notify(ctx, event, &snapshot); err != nil {
			slog.Warn("webhook delivery failed", "event", event, "content_id", snapshot.ID, "error", err)
		}
	}()
}

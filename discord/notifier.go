// Package discord delivers notifications through a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/pricewatch"
)

// DefaultTimeout bounds one webhook call.
const DefaultTimeout = 10 * time.Second

// Discord rejects embeds beyond these sizes.
const (
	maxTitle       = 256
	maxDescription = 4096
	maxFooter      = 2048
)

var _ pricewatch.Notifier = (*Notifier)(nil)

// Notifier posts each message as a single embed to a webhook URL.
type Notifier struct {
	webhookURL string
	username   string
	client     *http.Client
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithHTTPClient sets the client used for webhook calls.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) {
		n.client = c
	}
}

// WithUsername overrides the webhook's display name.
func WithUsername(name string) Option {
	return func(n *Notifier) {
		n.username = name
	}
}

// NewNotifier creates a Notifier for webhookURL.
func NewNotifier(webhookURL string, opts ...Option) *Notifier {
	n := &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type payload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string  `json:"title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Footer      *footer `json:"footer,omitempty"`
}

type footer struct {
	Text string `json:"text"`
}

// Notify posts msg. Any non-2xx response is an error; nothing is retried.
func (n *Notifier) Notify(ctx context.Context, msg *pricewatch.Message) error {
	e := embed{
		Title:       truncate(msg.Title, maxTitle),
		URL:         msg.URL,
		Description: truncate(msg.Body, maxDescription),
		Color:       msg.Color,
	}
	if msg.Footer != "" {
		e.Footer = &footer{Text: truncate(msg.Footer, maxFooter)}
	}

	body, err := json.Marshal(payload{Username: n.username, Embeds: []embed{e}})
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Package webhook forwards page identifiers to an external automation
// trigger, one blocking POST per page with a fixed delay in between. The
// delay is a deliberate rate limit for a downstream pipeline of unknown
// capacity.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"notion-assistant/internal/logger"
	"notion-assistant/internal/models"
)

// DefaultDelay is the pause between consecutive webhook calls.
const DefaultDelay = 120 * time.Second

type payload struct {
	PageID string `json:"page_id"`
}

// Notifier posts page ids to a webhook endpoint.
type Notifier struct {
	url    string
	delay  time.Duration
	client *http.Client
}

// New creates a Notifier for the given endpoint. A non-positive delay falls
// back to DefaultDelay.
func New(url string, delay time.Duration) *Notifier {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Notifier{
		url:   url,
		delay: delay,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Trigger posts a single page id to the endpoint. A transport failure is
// returned; a non-2xx response is logged and swallowed, since the endpoint
// declares no response contract.
func (n *Notifier) Trigger(ctx context.Context, page models.Page) error {
	body, err := json.Marshal(payload{PageID: page.ID})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook for page %s: %w", page.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("Webhook returned non-success status", map[string]interface{}{
			"page_id": page.ID,
			"status":  resp.StatusCode,
		})
	}
	return nil
}

// TriggerAll posts every page in order, waiting the configured delay between
// calls. The wait aborts when the context is cancelled; a transport failure
// stops the run.
func (n *Notifier) TriggerAll(ctx context.Context, pages []models.Page) error {
	for i, page := range pages {
		logger.Info("Triggering webhook", map[string]interface{}{
			"page_id": page.ID,
			"title":   page.Title,
		})
		if err := n.Trigger(ctx, page); err != nil {
			return err
		}
		if i == len(pages)-1 {
			break
		}
		select {
		case <-time.After(n.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/pagewatch"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Compile-time interface verification.
var _ pagewatch.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier posts detected changes as a form to a push endpoint. The
// form carries title, message, url and html=1 fields, the shape accepted by
// common push notification services.
type WebhookNotifier struct {
	client   *retryablehttp.Client
	endpoint string
	renderer pagewatch.Renderer
	logger   *zap.SugaredLogger
}

// NewWebhookNotifier creates a notifier posting messages rendered by r to
// endpoint.
func NewWebhookNotifier(client *retryablehttp.Client, endpoint string, r pagewatch.Renderer, logger *zap.SugaredLogger) *WebhookNotifier {
	return &WebhookNotifier{client: client, endpoint: endpoint, renderer: r, logger: logger}
}

// Notify posts the event when it reports a change. Delivery failures are
// logged and not returned.
func (n *WebhookNotifier) Notify(ctx context.Context, e pagewatch.Event) error {
	if e.Comparison.Status != pagewatch.StatusChanged {
		return nil
	}
	message, err := pagewatch.RenderWithFallback(n.renderer, &pagewatch.PlainTextRenderer{}, e.Delta())
	if err != nil {
		return err
	}

	form := url.Values{
		"title":   {e.Task.DisplayName()},
		"message": {message},
		"url":     {e.Task.URL},
		"html":    {"1"},
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		n.logger.Errorw("failed to create notification request", "task", e.Task.DisplayName(), "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Errorw("failed to send notification", "task", e.Task.DisplayName(), "round_id", e.RoundID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		n.logger.Errorw("notification rejected", "task", e.Task.DisplayName(), "round_id", e.RoundID, "status", resp.Status)
		return nil
	}
	n.logger.Infow("notification sent", "task", e.Task.DisplayName(), "round_id", e.RoundID)
	return nil
}

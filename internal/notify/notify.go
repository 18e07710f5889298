package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/metrics"
)

const sendTimeout = 30 * time.Second

// Notifier sends push notifications.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Client implements the ntfy notification client.
type Client struct {
	httpClient *http.Client
	config     *Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new ntfy client. m may be nil.
func NewClient(cfg *Config, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: sendTimeout,
		},
		config:  cfg,
		logger:  logger,
		metrics: m,
	}
}

// Send posts msg to the configured topic.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.config.Enabled {
		return nil
	}

	err := c.send(ctx, msg)
	if c.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.metrics.NotifySendTotal.WithLabelValues(status).Inc()
	}
	return err
}

func (c *Client) send(ctx context.Context, msg Message) error {
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(c.config.Server, "/"), c.config.Topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	priority := msg.Priority
	if priority == "" {
		priority = c.config.Priority
	}
	tags := append(c.config.TagList(), msg.Tags...)

	req.Header.Set("Title", msg.Title)
	req.Header.Set("Priority", priority)
	if len(tags) > 0 {
		req.Header.Set("Tags", strings.Join(tags, ","))
	}

	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("failed to send notification", zap.Error(err))
		return fmt.Errorf("sending notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain response body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("notification failed",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url),
		)
		return fmt.Errorf("notification failed with status: %d", resp.StatusCode)
	}

	c.logger.Debug("notification sent", zap.String("title", msg.Title))
	return nil
}

// NoopNotifier is a no-op implementation for when notifications are disabled.
type NoopNotifier struct{}

func (n *NoopNotifier) Send(_ context.Context, _ Message) error {
	return nil
}

// New creates the appropriate notifier based on config.
func New(cfg *Config, logger *zap.Logger, m *metrics.Metrics) Notifier {
	if !cfg.Enabled {
		return &NoopNotifier{}
	}
	return NewClient(cfg, logger, m)
}

// Handler returns an event handler that formats each event and sends it in
// the background with its own timeout.
func Handler(ctx context.Context, n Notifier, logger *zap.Logger) events.Handler {
	return func(ev events.Event) {
		msg := Format(ev)
		go func() {
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			defer cancel()

			if err := n.Send(sendCtx, msg); err != nil {
				logger.Warn("event notification failed",
					zap.String("kind", ev.Kind.String()),
					zap.Error(err),
				)
			}
		}()
	}
}

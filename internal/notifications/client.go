package notifications

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"cacamba_bot/internal/retry"

	"github.com/rs/zerolog/log"
)

const (
	circuitThreshold = 5
	circuitCooldown  = 30 * time.Second
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	topic      string
	enabled    bool
	priority   string
	policy     retry.Config
	// Circuit breaker state
	failures    int
	lastFailure time.Time
	circuitOpen bool
	mutex       sync.Mutex
	// Metrics
	totalSent   int64
	totalFailed int64
	totalTries  int64
	inflight    sync.WaitGroup
}

// SessionEventKind names a WhatsApp session change an operator may need to act on.
type SessionEventKind string

const (
	EventPairingRequired SessionEventKind = "pairing_required"
	EventLoggedOut       SessionEventKind = "logged_out"
	EventStreamReplaced  SessionEventKind = "stream_replaced"
	EventReconnected     SessionEventKind = "reconnected"
)

type SessionEvent struct {
	Kind   SessionEventKind
	Detail string
}

type NotificationError struct {
	Type       string
	StatusCode int
	Attempt    int
	Underlying error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification failed [%s] attempt %d: %v", e.Type, e.Attempt, e.Underlying)
}

func (e *NotificationError) Unwrap() error {
	return e.Underlying
}

func (e *NotificationError) IsRetryable() bool {
	switch e.Type {
	case "network", "server", "timeout", "rate_limit":
		return true
	case "auth", "client", "circuit_open":
		return false
	default:
		return e.StatusCode >= 500
	}
}

func NewClient(baseURL, topic string, enabled bool, priority string, policy retry.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		topic:    topic,
		enabled:  enabled,
		priority: priority,
		policy:   policy,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Client) SendNotification(ctx context.Context, message string) error {
	if !c.Enabled() {
		log.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	if c.isCircuitOpen() {
		log.Warn().Msg("Circuit breaker open, skipping notification")
		return &NotificationError{
			Type:       "circuit_open",
			Underlying: fmt.Errorf("circuit breaker is open"),
		}
	}

	attempt := 0
	_, err := retry.WithRetry(ctx, c.policy, func(ctx context.Context) (struct{}, error) {
		attempt++
		c.incrementTries()
		err := c.sendSingleNotification(ctx, message, attempt)
		if err == nil {
			return struct{}{}, nil
		}
		if notifErr, ok := err.(*NotificationError); ok && !notifErr.IsRetryable() {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("Non-retryable error, giving up")
			return struct{}{}, retry.Permanent(err)
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_retries", c.policy.MaxRetries).
			Msg("Notification attempt failed")
		return struct{}{}, err
	})
	if err != nil {
		c.recordFailure()
		return err
	}

	c.recordSuccess()
	return nil
}

func (c *Client) sendSingleNotification(ctx context.Context, message string, attempt int) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.topic)

	log.Debug().
		Str("url", url).
		Int("attempt", attempt).
		Msg("Sending notification")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(message))
	if err != nil {
		return &NotificationError{Type: "client", Attempt: attempt, Underlying: err}
	}

	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Tags", "truck")
	if c.priority != "" {
		req.Header.Set("Priority", c.priority)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NotificationError{Type: "network", Attempt: attempt, Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &NotificationError{
			Type:       categorizeHTTPError(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Attempt:    attempt,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	log.Debug().
		Int("status_code", resp.StatusCode).
		Int("attempt", attempt).
		Msg("Notification sent successfully")

	return nil
}

func (c *Client) SendNotificationAsync(ctx context.Context, message string) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		if err := c.SendNotification(ctx, message); err != nil {
			log.Warn().Err(err).Msg("Async notification failed")
		}
	}()
}

// Wait blocks until all async notifications have completed.
func (c *Client) Wait() {
	if c != nil {
		c.inflight.Wait()
	}
}

// NotifySessionEvent alerts the operator about a session change without
// blocking the caller.
func (c *Client) NotifySessionEvent(ctx context.Context, event SessionEvent) {
	if !c.Enabled() {
		return
	}

	log.Info().
		Str("event", string(event.Kind)).
		Msg("Sending session notification")

	c.SendNotificationAsync(ctx, formatSessionMessage(event))
}

func formatSessionMessage(event SessionEvent) string {
	var title string
	switch event.Kind {
	case EventPairingRequired:
		title = "🚛 Chatbot: scan the QR code to pair WhatsApp"
	case EventLoggedOut:
		title = "❌ Chatbot: WhatsApp session logged out, pairing again is required"
	case EventStreamReplaced:
		title = "⚠️ Chatbot: WhatsApp session opened elsewhere, this instance was disconnected"
	case EventReconnected:
		title = "✅ Chatbot: WhatsApp reconnected"
	default:
		title = fmt.Sprintf("🚛 Chatbot: %s", event.Kind)
	}

	if event.Detail == "" {
		return title
	}
	return title + "\n" + event.Detail
}

// Circuit breaker helpers

func (c *Client) isCircuitOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.circuitOpen {
		return false
	}

	// half-open: let the next attempt through after the cooldown
	if time.Since(c.lastFailure) > circuitCooldown {
		c.circuitOpen = false
		c.failures = 0
		log.Info().Msg("Circuit breaker moving to half-open state")
	}

	return c.circuitOpen
}

func (c *Client) recordSuccess() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalSent++
	c.failures = 0
	if c.circuitOpen {
		c.circuitOpen = false
		log.Info().Msg("Circuit breaker closed after successful notification")
	}
}

func (c *Client) recordFailure() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalFailed++
	c.failures++
	c.lastFailure = time.Now()

	if c.failures >= circuitThreshold && !c.circuitOpen {
		c.circuitOpen = true
		log.Warn().
			Int("failures", c.failures).
			Msg("Circuit breaker opened due to consecutive failures")
	}
}

func (c *Client) incrementTries() {
	c.mutex.Lock()
	c.totalTries++
	c.mutex.Unlock()
}

func categorizeHTTPError(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "auth"
	case statusCode == 429:
		return "rate_limit"
	case statusCode >= 400 && statusCode < 500:
		return "client"
	case statusCode >= 500:
		return "server"
	default:
		return "unknown"
	}
}

// GetMetrics returns sent, failed and attempted notification counts.
func (c *Client) GetMetrics() (sent, failed, attempts int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.totalSent, c.totalFailed, c.totalTries
}

// Package notify delivers workflow events to an outbound webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// EventType names a workflow event
type EventType string

const (
	RequestCreated     EventType = "request.created"
	RequestApproved    EventType = "request.approved"
	RequestRejected    EventType = "request.rejected"
	AssetIssued        EventType = "asset.issued"
	AssetReturned      EventType = "asset.returned"
	MaintenanceLogged  EventType = "maintenance.logged"
	IssueReported      EventType = "issue.reported"
	OnboardingReminder EventType = "onboarding.reminder"
)

const maxMessageLength = 1000

// Event is the webhook payload
type Event struct {
	Type      EventType         `json:"type"`
	Message   string            `json:"message"`
	Actor     string            `json:"actor,omitempty"`
	Link      string            `json:"link,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks the event before it is sent
func (e Event) Validate() error {
	if e.Type == "" {
		return errors.New("event type is required")
	}
	if e.Message == "" {
		return errors.New("event message is required")
	}
	if len(e.Message) > maxMessageLength {
		return fmt.Errorf("event message too long (max %d characters)", maxMessageLength)
	}
	return nil
}

// Truncate shortens msg to fit an event message, cutting on a rune
// boundary and marking the cut with an ellipsis
func Truncate(msg string) string {
	if len(msg) <= maxMessageLength {
		return msg
	}
	const ellipsis = "..."
	cut := maxMessageLength - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + ellipsis
}

// Notifier sends events
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Noop drops every event
type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }

// Config tunes the webhook client
type Config struct {
	URL           string
	Timeout       time.Duration
	RetryAttempts int
	RetryWait     time.Duration
	// Logger receives the client's own warnings; nil discards them
	Logger *zap.Logger
}

// DefaultConfig returns the usual webhook settings for url
func DefaultConfig(url string, log *zap.Logger) Config {
	return Config{
		URL:           url,
		Timeout:       10 * time.Second,
		RetryAttempts: 3,
		RetryWait:     500 * time.Millisecond,
		Logger:        log,
	}
}

// restyLogger routes resty's client log through zap
type restyLogger struct {
	log *zap.SugaredLogger
}

func (l restyLogger) Errorf(format string, v ...any) { l.log.Errorf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any) { l.log.Warnf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debugf(format, v...) }

// Webhook posts events as JSON to a URL
type Webhook struct {
	client *resty.Client
	url    string
	now    func() time.Time
}

// NewWebhook builds a resty-backed webhook notifier. Server errors and
// transport failures are retried.
func NewWebhook(cfg Config) *Webhook {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetLogger(restyLogger{log: log.Sugar()}).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "hardware-management-api").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryAttempts).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(4 * cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Webhook{client: client, url: cfg.URL, now: time.Now}
}

// New returns a webhook notifier for url, or Noop when url is empty
func New(url string, log *zap.Logger) Notifier {
	if url == "" {
		return Noop{}
	}
	return NewWebhook(DefaultConfig(url, log))
}

// Close drops the client's idle connections
func (w *Webhook) Close() error {
	w.client.GetClient().CloseIdleConnections()
	return nil
}

func (w *Webhook) Notify(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = w.now().UTC()
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(e).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("send %s notification: %w", e.Type, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notification webhook returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// Recorder keeps every event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Package onesignal is a thin client for the OneSignal notifications API.
package onesignal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"
)

const (
	// BaseURL is the OneSignal REST API root.
	BaseURL = "https://onesignal.com/api/v1"

	notificationsPath = "/notifications"

	optIncludedSegments = "included_segments"
	optIncludePlayerIDs = "include_player_ids"
)

// Message is the notification text for one language.
type Message struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// Content maps a language code ("en", "fr", ...) to its message.
type Content map[string]Message

// Notification is the normalized form sent to OneSignal. Headings only has
// languages that supplied a title; Contents has every language.
type Notification struct {
	Headings map[string]string `json:"headings"`
	Contents map[string]string `json:"contents"`
}

// Options are provider delivery options merged into the payload as-is.
type Options map[string]any

// DefaultOptions targets every subscribed user.
func DefaultOptions() Options {
	return Options{
		optIncludedSegments: []string{"All"},
	}
}

// Client builds and sends a single notification.
//
// A Client keeps the pending notification and options between calls and is
// meant for one caller at a time. Callers sharing a Client across goroutines
// must synchronize themselves.
type Client struct {
	appID       string
	restKey     string
	transport   Transport
	httpTimeout time.Duration
	logger      *slog.Logger

	options      Options
	notification *Notification
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPTimeout sets the timeout of the default transport. It has no
// effect when WithTransport is used.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpTimeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the given app. Both credentials are required.
func New(appID, restKey string, opts ...Option) (*Client, error) {
	if appID == "" {
		return nil, ErrMissingAppID
	}
	if restKey == "" {
		return nil, ErrMissingRESTKey
	}

	c := &Client{
		appID:   appID,
		restKey: restKey,
		options: DefaultOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// AppID returns the OneSignal application id.
func (c *Client) AppID() string {
	return c.appID
}

// Options returns a copy of the current delivery options.
func (c *Client) Options() Options {
	return maps.Clone(c.options)
}

// Notification returns a copy of the pending notification, or nil.
func (c *Client) Notification() *Notification {
	if c.notification == nil {
		return nil
	}
	return c.notification.clone()
}

// CreateNotification normalizes content and makes it the pending
// notification, replacing any previous one.
func (c *Client) CreateNotification(content Content) (*Notification, error) {
	n, err := normalize(content)
	if err != nil {
		return nil, err
	}

	c.notification = n
	return n.clone(), nil
}

// CreateNotificationJSON is CreateNotification for JSON input, see
// ParseContent.
func (c *Client) CreateNotificationJSON(raw []byte) (*Notification, error) {
	content, err := ParseContent(raw)
	if err != nil {
		return nil, err
	}
	return c.CreateNotification(content)
}

// SetOptions merges opts into the current options, opts winning on
// collisions. Targeting players drops the default segment, since OneSignal
// rejects requests carrying both.
func (c *Client) SetOptions(opts Options) error {
	if opts == nil {
		return ErrInvalidOptions
	}

	if _, ok := opts[optIncludePlayerIDs]; ok {
		delete(c.options, optIncludedSegments)
	}
	maps.Copy(c.options, opts)

	return nil
}

// SetOptionsJSON is SetOptions for a JSON object.
func (c *Client) SetOptionsJSON(raw []byte) error {
	opts, err := ParseOptions(raw)
	if err != nil {
		return err
	}
	return c.SetOptions(opts)
}

// Payload returns the JSON body Send would post.
func (c *Client) Payload() ([]byte, error) {
	if c.notification == nil {
		return nil, ErrNotificationNotSet
	}

	fields := map[string]any{
		"app_id":   c.appID,
		"headings": c.notification.Headings,
		"contents": c.notification.Contents,
	}
	maps.Copy(fields, c.options)

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return body, nil
}

// Endpoint is the URL notifications are posted to.
func (c *Client) Endpoint() string {
	return BaseURL + notificationsPath
}

// Send posts the pending notification. The response and any transport error
// are returned unchanged; HTTP status codes are not interpreted.
func (c *Client) Send(ctx context.Context) (*Response, error) {
	body, err := c.Payload()
	if err != nil {
		return nil, err
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(c.httpTimeout)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Basic "+c.restKey)

	c.logger.Debug("sending notification",
		"endpoint", c.Endpoint(),
		"languages", len(c.notification.Contents),
		"bytes", len(body),
	)

	return c.transport.Post(ctx, c.Endpoint(), Request{
		Header: header,
		Body:   body,
	})
}

// normalize checks every entry before building anything.
func normalize(content Content) (*Notification, error) {
	if content == nil {
		return nil, ErrInvalidFormat
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: no languages given", ErrContentRequired)
	}

	langs := slices.Sorted(maps.Keys(content))
	for _, lang := range langs {
		if content[lang].Content == "" {
			return nil, fmt.Errorf("%w: language %q", ErrContentRequired, lang)
		}
	}

	n := &Notification{
		Headings: make(map[string]string),
		Contents: make(map[string]string, len(content)),
	}
	for _, lang := range langs {
		m := content[lang]
		if m.Title != "" {
			n.Headings[lang] = m.Title
		}
		n.Contents[lang] = m.Content
	}

	return n, nil
}

func (n *Notification) clone() *Notification {
	return &Notification{
		Headings: maps.Clone(n.Headings),
		Contents: maps.Clone(n.Contents),
	}
}

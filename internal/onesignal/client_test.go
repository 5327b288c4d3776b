package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postCall struct {
	url string
	req Request
}

// fakeTransport records every Post.
type fakeTransport struct {
	calls []postCall
	resp  *Response
	err   error
}

func (f *fakeTransport) Post(ctx context.Context, url string, req Request) (*Response, error) {
	f.calls = append(f.calls, postCall{url: url, req: req})
	return f.resp, f.err
}

func newTestClient(t *testing.T) (*Client, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{resp: &Response{StatusCode: 200, Body: []byte(`{"id":"n1"}`)}}
	c, err := New("APP1", "KEY1", WithTransport(ft))
	require.NoError(t, err)
	return c, ft
}

func TestNew(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		c, err := New("app-id", "rest-key")
		require.NoError(t, err)

		assert.Equal(t, "app-id", c.AppID())
		assert.Equal(t, "rest-key", c.restKey)
		assert.Equal(t, DefaultOptions(), c.Options())
		assert.Nil(t, c.Notification())
	})

	t.Run("missing app id", func(t *testing.T) {
		c, err := New("", "rest-key")
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrMissingAppID)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("missing rest key", func(t *testing.T) {
		c, err := New("app-id", "")
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrMissingRESTKey)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("default transport is created lazily", func(t *testing.T) {
		c, err := New("app-id", "rest-key")
		require.NoError(t, err)
		assert.Nil(t, c.transport)
	})

	t.Run("default transport is built on first send", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		c, err := New("app-id", "rest-key", WithHTTPTimeout(3*time.Second), WithLogger(logger))
		require.NoError(t, err)
		_, err = c.CreateNotification(Content{"en": {Content: "Hello"}})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = c.Send(ctx)
		assert.ErrorIs(t, err, context.Canceled)

		tr, ok := c.transport.(*HTTPTransport)
		require.True(t, ok)
		assert.Equal(t, 3*time.Second, tr.httpClient.Timeout)
		assert.Contains(t, buf.String(), "sending notification")
		assert.NotContains(t, buf.String(), "rest-key")
	})

	t.Run("injected transport", func(t *testing.T) {
		ft := &fakeTransport{}
		c, err := New("app-id", "rest-key", WithTransport(ft))
		require.NoError(t, err)
		assert.Same(t, ft, c.transport)
	})
}

func TestClient_CreateNotification(t *testing.T) {
	t.Run("titles are optional per language", func(t *testing.T) {
		c, _ := newTestClient(t)

		n, err := c.CreateNotification(Content{
			"en": {Title: "Hi", Content: "Hello"},
			"fr": {Content: "Bonjour"},
		})
		require.NoError(t, err)

		assert.Equal(t, map[string]string{"en": "Hi"}, n.Headings)
		assert.Equal(t, map[string]string{"en": "Hello", "fr": "Bonjour"}, n.Contents)
		assert.Equal(t, n, c.Notification())
	})

	t.Run("missing content fails", func(t *testing.T) {
		c, _ := newTestClient(t)

		_, err := c.CreateNotification(Content{
			"en": {Title: "Hi", Content: "Hello"},
			"fr": {Title: "Salut"},
		})
		assert.ErrorIs(t, err, ErrContentRequired)
		assert.Contains(t, err.Error(), `"fr"`)
		assert.Nil(t, c.Notification())
	})

	t.Run("failure keeps previous notification", func(t *testing.T) {
		c, _ := newTestClient(t)

		_, err := c.CreateNotification(Content{"en": {Content: "first"}})
		require.NoError(t, err)

		_, err = c.CreateNotification(Content{"en": {}})
		require.Error(t, err)

		assert.Equal(t, map[string]string{"en": "first"}, c.Notification().Contents)
	})

	t.Run("replaces pending notification", func(t *testing.T) {
		c, _ := newTestClient(t)

		_, err := c.CreateNotification(Content{"en": {Title: "Old", Content: "first"}})
		require.NoError(t, err)
		_, err = c.CreateNotification(Content{"de": {Content: "zweite"}})
		require.NoError(t, err)

		n := c.Notification()
		assert.Empty(t, n.Headings)
		assert.Equal(t, map[string]string{"de": "zweite"}, n.Contents)
	})

	t.Run("empty title is not a heading", func(t *testing.T) {
		c, _ := newTestClient(t)

		n, err := c.CreateNotificationJSON([]byte(`{"en":{"title":"","content":"x"}}`))
		require.NoError(t, err)

		assert.Empty(t, n.Headings)
		assert.Equal(t, map[string]string{"en": "x"}, n.Contents)
	})

	t.Run("nil content", func(t *testing.T) {
		c, _ := newTestClient(t)
		_, err := c.CreateNotification(nil)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("no languages", func(t *testing.T) {
		c, _ := newTestClient(t)
		_, err := c.CreateNotification(Content{})
		assert.ErrorIs(t, err, ErrContentRequired)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		c, _ := newTestClient(t)

		n, err := c.CreateNotification(Content{"en": {Content: "Hello"}})
		require.NoError(t, err)
		n.Contents["en"] = "changed"

		assert.Equal(t, "Hello", c.Notification().Contents["en"])
	})
}

func TestClient_CreateNotificationJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "valid", raw: `{"en":{"title":"Hi","content":"Hello"},"fr":{"content":"Bonjour"}}`},
		{name: "array", raw: `[{"content":"Hello"}]`, wantErr: ErrInvalidFormat},
		{name: "string", raw: `"Hello"`, wantErr: ErrInvalidFormat},
		{name: "null", raw: `null`, wantErr: ErrInvalidFormat},
		{name: "entry not an object", raw: `{"en":"Hello"}`, wantErr: ErrInvalidFormat},
		{name: "missing content", raw: `{"en":{"title":"Hi"}}`, wantErr: ErrContentRequired},
		{name: "null entry", raw: `{"en":null}`, wantErr: ErrContentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t)

			n, err := c.CreateNotificationJSON([]byte(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, map[string]string{"en": "Hi"}, n.Headings)
			assert.Equal(t, map[string]string{"en": "Hello", "fr": "Bonjour"}, n.Contents)
		})
	}
}

func TestClient_SetOptions(t *testing.T) {
	t.Run("player ids drop default segment", func(t *testing.T) {
		c, _ := newTestClient(t)

		err := c.SetOptions(Options{"include_player_ids": []string{"abc"}})
		require.NoError(t, err)

		opts := c.Options()
		assert.NotContains(t, opts, "included_segments")
		assert.Equal(t, []string{"abc"}, opts["include_player_ids"])
	})

	t.Run("later calls override on collision", func(t *testing.T) {
		c, _ := newTestClient(t)

		require.NoError(t, c.SetOptions(Options{"ttl": 60, "priority": 5}))
		require.NoError(t, c.SetOptions(Options{"ttl": 120, "url": "https://example.com"}))

		assert.Equal(t, Options{
			"included_segments": []string{"All"},
			"ttl":               120,
			"priority":          5,
			"url":               "https://example.com",
		}, c.Options())
	})

	t.Run("segments can be replaced", func(t *testing.T) {
		c, _ := newTestClient(t)

		require.NoError(t, c.SetOptions(Options{"included_segments": []string{"Active Users"}}))
		assert.Equal(t, []string{"Active Users"}, c.Options()["included_segments"])
	})

	t.Run("nested values are not merged", func(t *testing.T) {
		c, _ := newTestClient(t)

		require.NoError(t, c.SetOptions(Options{"data": map[string]any{"a": 1}}))
		require.NoError(t, c.SetOptions(Options{"data": map[string]any{"b": 2}}))

		assert.Equal(t, map[string]any{"b": 2}, c.Options()["data"])
	})

	t.Run("nil options", func(t *testing.T) {
		c, _ := newTestClient(t)

		err := c.SetOptions(nil)
		assert.ErrorIs(t, err, ErrInvalidOptions)
		assert.Equal(t, DefaultOptions(), c.Options())
	})

	t.Run("json object", func(t *testing.T) {
		c, _ := newTestClient(t)

		require.NoError(t, c.SetOptionsJSON([]byte(`{"include_player_ids":["p1","p2"]}`)))
		assert.Equal(t, []any{"p1", "p2"}, c.Options()["include_player_ids"])
		assert.NotContains(t, c.Options(), "included_segments")
	})

	t.Run("json non-object", func(t *testing.T) {
		c, _ := newTestClient(t)

		assert.ErrorIs(t, c.SetOptionsJSON([]byte(`["p1"]`)), ErrInvalidOptions)
		assert.ErrorIs(t, c.SetOptionsJSON([]byte(`null`)), ErrInvalidOptions)
		assert.Equal(t, DefaultOptions(), c.Options())
	})
}

func TestClient_Send(t *testing.T) {
	t.Run("without notification", func(t *testing.T) {
		c, ft := newTestClient(t)

		resp, err := c.Send(context.Background())
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrNotificationNotSet)
		assert.Empty(t, ft.calls)
	})

	t.Run("posts payload", func(t *testing.T) {
		c, ft := newTestClient(t)

		_, err := c.CreateNotification(Content{"en": {Content: "Hello"}})
		require.NoError(t, err)

		resp, err := c.Send(context.Background())
		require.NoError(t, err)
		assert.Same(t, ft.resp, resp)

		require.Len(t, ft.calls, 1)
		call := ft.calls[0]
		assert.Equal(t, "https://onesignal.com/api/v1/notifications", call.url)
		assert.Equal(t, "Basic KEY1", call.req.Header.Get("Authorization"))
		assert.Equal(t, "application/json", call.req.Header.Get("Content-Type"))
		assert.JSONEq(t,
			`{"app_id":"APP1","headings":{},"contents":{"en":"Hello"},"included_segments":["All"]}`,
			string(call.req.Body))
		assert.NotContains(t, string(call.req.Body), "KEY1")
	})

	t.Run("includes headings and options", func(t *testing.T) {
		c, ft := newTestClient(t)

		_, err := c.CreateNotification(Content{
			"en": {Title: "Hi", Content: "Hello"},
			"fr": {Content: "Bonjour"},
		})
		require.NoError(t, err)
		require.NoError(t, c.SetOptions(Options{"include_player_ids": []string{"abc"}}))

		_, err = c.Send(context.Background())
		require.NoError(t, err)

		require.Len(t, ft.calls, 1)
		assert.JSONEq(t,
			`{"app_id":"APP1","headings":{"en":"Hi"},"contents":{"en":"Hello","fr":"Bonjour"},"include_player_ids":["abc"]}`,
			string(ft.calls[0].req.Body))
	})

	t.Run("options override earlier fields", func(t *testing.T) {
		c, ft := newTestClient(t)

		_, err := c.CreateNotification(Content{"en": {Content: "Hello"}})
		require.NoError(t, err)
		require.NoError(t, c.SetOptions(Options{"app_id": "OTHER"}))

		_, err = c.Send(context.Background())
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(ft.calls[0].req.Body, &body))
		assert.Equal(t, "OTHER", body["app_id"])
	})

	t.Run("transport error propagates", func(t *testing.T) {
		c, ft := newTestClient(t)
		ft.err = errors.New("connection refused")
		ft.resp = nil

		_, err := c.CreateNotification(Content{"en": {Content: "Hello"}})
		require.NoError(t, err)

		resp, err := c.Send(context.Background())
		assert.Nil(t, resp)
		assert.Same(t, ft.err, err)
	})

	t.Run("error status is passed through", func(t *testing.T) {
		c, ft := newTestClient(t)
		ft.resp = &Response{StatusCode: 400, Body: []byte(`{"errors":["bad"]}`)}

		_, err := c.CreateNotification(Content{"en": {Content: "Hello"}})
		require.NoError(t, err)

		resp, err := c.Send(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("payload is rebuilt per send", func(t *testing.T) {
		c, ft := newTestClient(t)

		_, err := c.CreateNotification(Content{"en": {Content: "one"}})
		require.NoError(t, err)
		_, err = c.Send(context.Background())
		require.NoError(t, err)

		_, err = c.CreateNotification(Content{"en": {Content: "two"}})
		require.NoError(t, err)
		_, err = c.Send(context.Background())
		require.NoError(t, err)

		require.Len(t, ft.calls, 2)
		assert.Contains(t, string(ft.calls[0].req.Body), `"one"`)
		assert.Contains(t, string(ft.calls[1].req.Body), `"two"`)
	})
}

func TestClient_Payload(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Payload()
	assert.ErrorIs(t, err, ErrNotificationNotSet)

	_, err = c.CreateNotification(Content{"en": {Content: "Hello"}})
	require.NoError(t, err)

	body, err := c.Payload()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"app_id":"APP1","headings":{},"contents":{"en":"Hello"},"included_segments":["All"]}`,
		string(body))
}

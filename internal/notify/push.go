package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/pushsignal/internal/db"
	"github.com/abdulachik/pushsignal/internal/onesignal"
	"github.com/google/uuid"
)

// Recorder stores the outcome of each delivery attempt.
type Recorder interface {
	CreateDelivery(ctx context.Context, arg db.CreateDeliveryParams) (db.Delivery, error)
}

// PushNotifier delivers notifications through OneSignal.
//
// Every Send uses a fresh onesignal.Client, so options set for one
// notification never leak into the next.
type PushNotifier struct {
	appID       string
	restKey     string
	httpTimeout time.Duration
	transport   onesignal.Transport
	recorder    Recorder
	logger      *slog.Logger
	dryRun      bool
}

// PushConfig holds configuration for the push notifier.
type PushConfig struct {
	AppID       string
	RESTKey     string
	HTTPTimeout time.Duration
	Transport   onesignal.Transport // nil lets each client build its HTTP transport
	Recorder    Recorder            // optional delivery log
	Logger      *slog.Logger
	DryRun      bool // build payloads without sending
}

// NewPushNotifier creates a new push notifier.
func NewPushNotifier(cfg PushConfig) (*PushNotifier, error) {
	if cfg.AppID == "" {
		return nil, onesignal.ErrMissingAppID
	}
	if cfg.RESTKey == "" {
		return nil, onesignal.ErrMissingRESTKey
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PushNotifier{
		appID:       cfg.AppID,
		restKey:     cfg.RESTKey,
		httpTimeout: cfg.HTTPTimeout,
		transport:   cfg.Transport,
		recorder:    cfg.Recorder,
		logger:      logger,
		dryRun:      cfg.DryRun,
	}, nil
}

func (p *PushNotifier) clientOptions() []onesignal.Option {
	opts := []onesignal.Option{
		onesignal.WithHTTPTimeout(p.httpTimeout),
		onesignal.WithLogger(p.logger),
	}
	if p.transport != nil {
		opts = append(opts, onesignal.WithTransport(p.transport))
	}
	return opts
}

// Send builds the payload for notification and posts it. Non-2xx responses
// are returned as results, not errors.
func (p *PushNotifier) Send(ctx context.Context, notification Notification) (*Result, error) {
	client, err := onesignal.New(p.appID, p.restKey, p.clientOptions()...)
	if err != nil {
		return nil, err
	}

	if _, err := client.CreateNotification(notification.Messages); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	if notification.Options != nil {
		if err := client.SetOptions(notification.Options); err != nil {
			return nil, fmt.Errorf("set options: %w", err)
		}
	}

	payload, err := client.Payload()
	if err != nil {
		return nil, fmt.Errorf("build payload: %w", err)
	}

	if p.dryRun {
		p.logger.Info("dry run, not sending notification", "languages", len(notification.Messages))
		return &Result{Payload: payload, DryRun: true}, nil
	}

	resp, sendErr := client.Send(ctx)

	result := &Result{Payload: payload}
	if resp != nil {
		result.StatusCode = resp.StatusCode
		result.Body = resp.Body
	}
	result.DeliveryID = p.record(ctx, client.Endpoint(), payload, resp, sendErr)

	if sendErr != nil {
		return nil, fmt.Errorf("send notification: %w", sendErr)
	}

	p.logger.Info("notification sent",
		"status", result.StatusCode,
		"delivery_id", result.DeliveryID,
	)

	return result, nil
}

// record logs the attempt and returns its id. Failures are only logged.
func (p *PushNotifier) record(ctx context.Context, endpoint string, payload []byte, resp *onesignal.Response, sendErr error) string {
	if p.recorder == nil {
		return ""
	}

	params := db.CreateDeliveryParams{
		ID:       uuid.NewString(),
		AppID:    p.appID,
		Endpoint: endpoint,
		Payload:  string(payload),
	}
	if resp != nil {
		params.StatusCode = sql.NullInt64{Int64: int64(resp.StatusCode), Valid: true}
		params.ResponseBody = sql.NullString{String: string(resp.Body), Valid: true}
	}
	if sendErr != nil {
		params.Error = sql.NullString{String: sendErr.Error(), Valid: true}
	}

	delivery, err := p.recorder.CreateDelivery(ctx, params)
	if err != nil {
		p.logger.Warn("failed to record delivery", "error", err)
		return ""
	}
	return delivery.ID
}

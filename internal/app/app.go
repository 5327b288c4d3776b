package app

import (
	"context"

	"github.com/abdulachik/pushsignal/internal/config"
	"github.com/abdulachik/pushsignal/internal/db"
	"github.com/abdulachik/pushsignal/internal/notify"
	"github.com/abdulachik/pushsignal/internal/onesignal"
)

// App is the main application container holding all dependencies.
type App struct {
	Config   *config.Config
	Store    *db.Store
	Notifier notify.Notifier
}

// Options tweak how the container is built.
type Options struct {
	DryRun    bool
	Transport onesignal.Transport // nil uses the HTTP transport
}

// New creates a new application instance with all dependencies wired up.
// The caller must validate cfg for sending first.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	notifier, err := notify.NewPushNotifier(notify.PushConfig{
		AppID:       cfg.OneSignalAppID,
		RESTKey:     cfg.OneSignalRESTKey,
		HTTPTimeout: cfg.HTTPTimeout,
		Transport:   opts.Transport,
		Recorder:    store,
		DryRun:      opts.DryRun,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Store:    store,
		Notifier: notifier,
	}, nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

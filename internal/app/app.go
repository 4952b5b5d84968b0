package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/five82/shopdesk/internal/admin"
	"github.com/five82/shopdesk/internal/auth"
	"github.com/five82/shopdesk/internal/config"
	"github.com/five82/shopdesk/internal/localstore"
	"github.com/five82/shopdesk/internal/logging"
	"github.com/five82/shopdesk/internal/notify"
	"github.com/five82/shopdesk/internal/orders"
	"github.com/five82/shopdesk/internal/prefs"
	"github.com/five82/shopdesk/internal/shopapi"
	"github.com/five82/shopdesk/internal/state"
	"github.com/five82/shopdesk/internal/ui"
	"github.com/five82/shopdesk/internal/wishlist"
)

// Options configure the shopdesk application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shopdesk/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
	// Stderr, when set, also receives warnings and errors. CLI commands
	// pass os.Stderr; the TUI leaves it nil because it owns the terminal.
	Stderr io.Writer
}

// Services is everything a command needs, wired from one config.
type Services struct {
	Config   config.Config
	Log      *logging.Logger
	Client   *shopapi.Client
	Session  *auth.Session
	Auth     auth.Service
	Wishlist *wishlist.Store
	Admin    *admin.Console
	Orders   *orders.Book
	Feed     *state.Store
	Loader   FeedLoader
	Prefs    prefs.Prefs
}

// Close flushes the log file.
func (s *Services) Close() error {
	if s == nil || s.Log == nil {
		return nil
	}
	return s.Log.Close()
}

// Bootstrap loads configuration and builds the services. notifier receives
// user-facing messages from list loads and admin mutations; nil logs them.
func Bootstrap(opts Options, notifier notify.Notifier) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogPath(),
		Stderr: opts.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	if notifier == nil {
		notifier = notify.Log{Logger: logger}
	}

	kv, err := localstore.Open(cfg.StoreDir())
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open local store: %w", err)
	}

	session, err := auth.Open(kv, logger.WithField("component", "auth"))
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}

	client, err := shopapi.NewClient(shopapi.Options{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.RequestTimeout,
		RetryCount: cfg.ClientRetries(),
		RetryDelay: cfg.RetryDelay,
		Tokens:     session,
		Logger:     logger.WithField("component", "shopapi"),
	})
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	wish, err := wishlist.Open(kv, logger.WithField("component", "wishlist"))
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open wishlist: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	feed := &state.Store{}
	svc := &Services{
		Config:   cfg,
		Log:      logger,
		Client:   client,
		Session:  session,
		Auth:     auth.Service{API: client, Session: session},
		Wishlist: wish,
		Admin:    admin.New(client, admin.Options{Notifier: notifier, Logger: logger}),
		Orders:   orders.NewBook(orders.DefaultPricing, orders.Sample(time.Now())),
		Feed:     feed,
		Prefs:    userPrefs,
	}
	svc.Loader = FeedLoader{
		API:      client,
		Store:    feed,
		PageSize: userPrefs.PageSizeOr(cfg.PageSize),
		Log:      logger.WithField("component", "feed"),
	}
	logger.WithField("api_url", client.BaseURL()).Debug("services ready")
	return svc, nil
}

// Run boots the shopdesk TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	toasts := notify.NewToasts()
	svc, err := Bootstrap(opts, toasts)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	interval := svc.Config.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Start background poller; its first refresh runs immediately.
	StartPoller(ctx, svc.Loader, interval)

	svc.Log.WithField("poll_interval", interval).Info("starting shopdesk")
	err = ui.Run(ui.Options{
		Context:        ctx,
		Catalog:        svc.Client,
		Feed:           svc.Feed,
		Refresh:        svc.Loader.Refresh,
		Auth:           svc.Auth,
		Wishlist:       svc.Wishlist,
		Admin:          svc.Admin,
		Orders:         svc.Orders,
		Toasts:         toasts,
		Logger:         svc.Log,
		LogPath:        svc.Log.File(),
		PageSize:       svc.Config.PageSize,
		SearchDebounce: svc.Config.SearchDebounce,
		Prefs:          svc.Prefs,
		PrefsPath:      opts.PrefsPath,
	})
	if err != nil {
		svc.Log.WithError(err).Error("ui exited with error")
	}
	return err
}

// Package control wires configuration, storage, and the dispatch
// pipeline into a runnable application.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/core/config"
	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/delivery"
	"github.com/orbitwallet/linkdispatch/internal/dispatch"
	"github.com/orbitwallet/linkdispatch/internal/engine"
	"github.com/orbitwallet/linkdispatch/internal/engine/enginetest"
	"github.com/orbitwallet/linkdispatch/internal/events"
	"github.com/orbitwallet/linkdispatch/internal/health"
	redisclient "github.com/orbitwallet/linkdispatch/internal/infra/redis"
	"github.com/orbitwallet/linkdispatch/internal/infra/storage"
	"github.com/orbitwallet/linkdispatch/internal/infra/storage/memory"
	"github.com/orbitwallet/linkdispatch/internal/infra/storage/postgres"
	"github.com/orbitwallet/linkdispatch/internal/launcher"
	"github.com/orbitwallet/linkdispatch/internal/registry"
	"github.com/orbitwallet/linkdispatch/internal/worker"
)

// Options carries the pieces an embedding application must provide.
// Account is optional; without one the demo engine is built from the
// configured wallets.
type Options struct {
	Account   engine.Account
	Prompter  dispatch.Prompter
	Navigator dispatch.Navigator
	Alerter   dispatch.Alerter
	Logger    *slog.Logger
}

// App is the main application struct that manages the dispatcher
// lifecycle.
type App struct {
	cfg          *config.AppConfig
	dispatcher   *dispatch.Dispatcher
	account      engine.Account
	settings     *CachedSettings
	dispatchRepo storage.DispatchRepository
	db           *postgres.DB
	redisClient  *redisclient.Client
	listener     *postgres.SelectionListener
	pruner       *worker.Pruner
	healthServer *health.Server
	emitter      events.Emitter
	log          *slog.Logger
}

// NewApp creates a new App instance with all dependencies initialized.
func NewApp(cfg *config.AppConfig, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	// 1. Initialize Storage
	var (
		dispatchRepo storage.DispatchRepository
		settingsRepo storage.SettingsRepository
		promptRepo   storage.PromptShownRepository
		db           *postgres.DB
	)
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(cfg.Database.MigrationsDir); err != nil {
			return nil, err
		}
		dispatchRepo = postgres.NewDispatchRepo(db)
		settingsRepo = postgres.NewSettingsRepo(db)
		promptRepo = postgres.NewPromptRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		dispatchRepo = memory.NewDispatchRepo(store)
		settingsRepo = memory.NewSettingsRepo(store)
		promptRepo = memory.NewPromptRepo(store)
		log.Info("Using Memory storage")
	}

	// 2. Initialize Redis (optional)
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
	}

	// 3. Lifecycle events
	var emitter events.Emitter = events.NewLogEmitter(log)
	if redisClient != nil {
		emitter = events.NewMultiEmitter(emitter,
			events.NewRedisEmitter(redisClient, cfg.Dispatch.EventsChannel))
	}

	// 4. Wallet engine
	account := opts.Account
	if account == nil {
		account = BuildDemoAccount(cfg.Wallets)
	}
	settings := NewCachedSettings(settingsRepo)
	if err := seedSelection(settings, cfg.Wallets); err != nil {
		return nil, err
	}

	// 5. Name registry (optional)
	var resolver registry.Resolver
	if cfg.Registry.BaseURL != "" {
		resolver = registry.NewHTTPResolver(cfg.Registry.BaseURL, cfg.Registry.Timeout.Std())
		if redisClient != nil {
			resolver = registry.NewCachedResolver(resolver, redisClient, cfg.Registry.CacheTTL.Std(), log)
		}
	}

	// 6. Prompt tracking: shared via Redis when available
	var prompts dispatch.PromptTracker = promptRepo
	if redisClient != nil {
		prompts = redisPromptTracker{client: redisClient}
	}

	// 7. Dispatcher
	dispatcher, err := dispatch.New(dispatch.Options{
		Account:   account,
		Settings:  settings,
		Prompter:  opts.Prompter,
		Navigator: opts.Navigator,
		Alerter:   opts.Alerter,
		Launcher:  &launcher.ExecLauncher{},
		Sender:    delivery.NewHTTPSender(cfg.Dispatch.DeliveryTimeout.Std()),
		Payments:  delivery.NewPaymentProtocolClient(cfg.Dispatch.DeliveryTimeout.Std()),
		Registry:  resolver,
		Prompts:   prompts,
		Audit:     dispatchRepo,
		Emitter:   emitter,
		Logger:    log,
		Config: dispatch.Config{
			AlertDelay:       cfg.Dispatch.AlertDelay.Std(),
			ConfirmDelay:     cfg.Dispatch.ConfirmDelay.Std(),
			MaxRedirectDepth: cfg.Dispatch.MaxRedirectDepth,
			AppName:          cfg.Dispatch.AppName,
			BuyCryptoChains:  cfg.Dispatch.BuyCryptoChains,
		},
	})
	if err != nil {
		return nil, err
	}

	// 8. Health
	monitor := health.NewMonitor(dispatchRepo)
	if db != nil {
		monitor.Register("database", db.Health)
	}
	if redisClient != nil {
		monitor.Register("redis", redisClient.Health)
	}
	healthServer := health.NewServer(monitor, dispatchRepo, cfg.Server.Port)

	app := &App{
		cfg:          cfg,
		dispatcher:   dispatcher,
		account:      account,
		settings:     settings,
		dispatchRepo: dispatchRepo,
		db:           db,
		redisClient:  redisClient,
		healthServer: healthServer,
		emitter:      emitter,
		log:          log,
	}

	// 9. Cross-process selection invalidation
	if db != nil {
		app.listener = postgres.NewSelectionListener(cfg.Database.URL, func(walletID string) {
			log.Debug("selection changed elsewhere", "wallet", walletID)
			settings.Invalidate()
		}, log)
	}

	// 10. Audit retention
	if cfg.Dispatch.RetentionPeriod > 0 {
		app.pruner = worker.NewPruner(cfg.Dispatch.RetentionPeriod.Std(), dispatchRepo, log)
	}

	return app, nil
}

// Dispatcher exposes the dispatch pipeline entry point.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dispatcher }

// Account exposes the wallet engine.
func (a *App) Account() engine.Account { return a.account }

// Dispatches exposes the audit log.
func (a *App) Dispatches() storage.DispatchRepository { return a.dispatchRepo }

// Settings exposes the selection store.
func (a *App) Settings() *CachedSettings { return a.settings }

// Start starts the app and all its background components.
func (a *App) Start(ctx context.Context) error {
	go func() {
		a.log.Info("Health server listening", "port", a.cfg.Server.Port)
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}
	if a.listener != nil {
		go a.listener.Start(ctx)
	}
	if a.pruner != nil {
		go a.pruner.Start(ctx)
	}

	return nil
}

// Stop stops the app.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping linkdispatch...")

	if err := a.emitter.Close(); err != nil {
		a.log.Warn("Failed to close emitter", "error", err)
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return a.healthServer.Stop(shutdownCtx)
}

// redisPromptTracker shares the once-only prompt set across app
// instances through Redis.
type redisPromptTracker struct {
	client *redisclient.Client
}

func (t redisPromptTracker) MarkShown(ctx context.Context, kind, walletID string) (bool, error) {
	return t.client.MarkPromptShown(ctx, kind, walletID)
}

// BuildDemoAccount assembles the in-memory engine from configured
// wallets.
func BuildDemoAccount(wallets []config.WalletConfig) engine.Account {
	demo := make([]*enginetest.Wallet, len(wallets))
	for i, w := range wallets {
		demo[i] = &enginetest.Wallet{
			WalletID:   w.ID,
			WalletName: w.Name,
			Info: engine.CurrencyInfo{
				PluginID:     w.PluginID,
				CurrencyCode: w.CurrencyCode,
			},
			Tokens:   w.Tokens,
			Balances: w.Balances,
			Address:  w.Address,
		}
	}
	return enginetest.NewAccount(demo...)
}

// seedSelection stores the configured default selection when none is
// persisted yet.
func seedSelection(settings *CachedSettings, wallets []config.WalletConfig) error {
	ctx := context.Background()
	current, err := settings.Selection(ctx)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}
	if current.WalletID != "" {
		return nil
	}
	for _, w := range wallets {
		if w.Selected {
			return settings.SaveSelection(ctx, &domain.Selection{
				WalletID:     w.ID,
				CurrencyCode: w.CurrencyCode,
			})
		}
	}
	return nil
}

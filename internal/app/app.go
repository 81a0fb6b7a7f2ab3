// -----------------------------------------------------------------------
// Application wiring - constructs storage, services and handlers in
// dependency order and tears them down in reverse.
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/handlers"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/services/ai"
	"github.com/ternarybob/augur/internal/services/events"
	"github.com/ternarybob/augur/internal/services/portfolio"
	"github.com/ternarybob/augur/internal/services/scheduler"
	"github.com/ternarybob/augur/internal/services/status"
	badgerstore "github.com/ternarybob/augur/internal/storage/badger"
)

const portfolioRefreshJob = "portfolio-refresh"

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB               *badgerstore.BadgerDB
	KVStorage        interfaces.KeyValueStorage
	PortfolioStorage interfaces.PortfolioStorage
	QuoteCache       interfaces.QuoteCache

	// Services
	EventService     interfaces.EventService
	StatusService    *status.Service
	ProviderFactory  *ai.ProviderFactory
	Research         *ai.Research
	PortfolioService *portfolio.Service
	SchedulerService *scheduler.Service

	// User data
	Watchlist *common.Watchlist

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	ResearchHandler  *handlers.ResearchHandler
	PortfolioHandler *handlers.PortfolioHandler
	KVHandler        *handlers.KVHandler
	StatusHandler    *handlers.StatusHandler
	WSHandler        *handlers.WebSocketHandler
}

// New creates the application with all components wired.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	common.SetDefaultExchange(cfg.Markets.DefaultExchange)

	if err := a.initStorage(); err != nil {
		return nil, err
	}
	if err := a.initServices(); err != nil {
		return nil, err
	}
	a.initHandlers()

	a.SchedulerService.Start()

	logger.Info().
		Str("provider", string(cfg.LLM.DefaultProvider)).
		Int("watchlist_tickers", len(a.Watchlist.Tickers)).
		Msg("Application initialized")

	return a, nil
}

func (a *App) initStorage() error {
	db, err := badgerstore.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	a.DB = db
	a.KVStorage = badgerstore.NewKVStorage(db, a.Logger)
	a.PortfolioStorage = badgerstore.NewPortfolioStorage(db, a.Logger)
	a.QuoteCache = badgerstore.NewQuoteCacheStorage(db, a.Logger)
	return nil
}

func (a *App) initServices() error {
	a.EventService = events.NewService(a.Logger)
	a.StatusService = status.NewService(a.EventService, a.Logger)

	a.ProviderFactory = ai.NewProviderFactory(
		&a.Config.Gemini,
		&a.Config.Claude,
		&a.Config.LLM,
		a.KVStorage,
		a.Logger,
	)
	a.Research = ai.NewResearch(a.ProviderFactory, a.Logger)

	a.PortfolioService = portfolio.NewService(
		a.Research,
		a.PortfolioStorage,
		a.QuoteCache,
		a.StatusService,
		a.EventService,
		&a.Config.Portfolio,
		a.Logger,
	)

	watchlist, err := common.LoadWatchlist(a.Config.Watchlist.Path)
	if err != nil {
		return err
	}
	a.Watchlist = watchlist

	a.SchedulerService = scheduler.NewService(a.Logger)
	if err := a.SchedulerService.Register(
		portfolioRefreshJob,
		a.Config.Portfolio.RefreshSchedule,
		func(ctx context.Context) error {
			_, err := a.PortfolioService.RefreshQuotes(ctx, "")
			return err
		},
	); err != nil {
		return fmt.Errorf("failed to register portfolio refresh job: %w", err)
	}

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Watchlist)
	a.ResearchHandler = handlers.NewResearchHandler(a.Research, a.StatusService, a.QuoteCache, a.Logger)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.PortfolioService, a.Logger)
	a.KVHandler = handlers.NewKVHandler(a.KVStorage, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.StatusService, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.Logger)
}

// Close shuts down components in reverse dependency order.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.EventService != nil {
		a.EventService.Close()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close database")
			return err
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}

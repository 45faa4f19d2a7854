package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/RazvanRotari/deadman/internal/checkin"
	"github.com/RazvanRotari/deadman/internal/config"
	"github.com/RazvanRotari/deadman/internal/metrics"
	"github.com/RazvanRotari/deadman/internal/notifier"
	"github.com/RazvanRotari/deadman/internal/store"
	"github.com/RazvanRotari/deadman/internal/sweeper"
	"github.com/RazvanRotari/deadman/internal/telegram"
)

// App owns the three long-running units: the HTTP check-in server, the
// overdue sweeper, and the Telegram update loop.
type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	metrics *metrics.Collector
	repo    store.Repo
}

// New connects to Telegram and prepares the application.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	return &App{
		cfg:     cfg,
		log:     log,
		bot:     bot,
		metrics: metrics.NewCollector(),
	}, nil
}

// Run starts all units and blocks until a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting deadman",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Int("sweepIntervalSeconds", a.cfg.SweepIntervalSeconds),
		zap.Int("defaultIntervalMinutes", a.cfg.DefaultIntervalMinutes),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// HTTP check-in surface.
	svc := checkin.NewService(a.repo, a.log, a.metrics)
	httpSrv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      checkin.NewRouter(svc, a.metrics, a.log),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	// Overdue sweeper.
	sw := sweeper.New(
		a.repo,
		notifier.NewTelegram(a.bot),
		a.log,
		a.metrics,
		time.Duration(a.cfg.SweepIntervalSeconds)*time.Second,
	)
	go sw.Run(ctx)

	// Telegram update loop.
	router := telegram.NewRouter(a.bot, a.log, a.repo, a.metrics, a.cfg.DefaultIntervalMinutes)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			router.HandleUpdate(ctx, upd)
		}
	}
}

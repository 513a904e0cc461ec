package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"memebot/internal/api"
	"memebot/internal/bot"
	"memebot/internal/config"
	"memebot/internal/executor"
	"memebot/internal/market"
	"memebot/internal/repository"
	"memebot/internal/storage"
	"memebot/internal/websocket"
	"memebot/pkg/utils"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	zlog := logger.Logger
	defer zlog.Sync()

	zlog.Info("starting memebot",
		zap.String("mode", cfg.Executor.Mode),
		zap.Duration("tick_interval", cfg.Bot.TickInterval))

	// Снапшоты горячего состояния (позиции и чёрный список)
	snapshots, err := storage.NewSnapshotStore(cfg.Storage.Dir, zlog)
	if err != nil {
		zlog.Fatal("snapshot store init failed", zap.Error(err))
	}

	// Сканер рынка
	scanner, err := market.NewScanner(cfg.Scanner, zlog)
	if err != nil {
		zlog.Fatal("scanner init failed", zap.Error(err))
	}

	// Исполнитель свопов (SIMU или REAL)
	exec, err := executor.NewExecutor(cfg.Executor, cfg.Security, cfg.Strategy.AllowedVenues, scanner.Price, zlog)
	if err != nil {
		zlog.Fatal("executor init failed", zap.Error(err))
	}

	// БД опциональна: без неё бот торгует, но не ведёт журнал
	var (
		tradeRepo *repository.TradeRepository
		notifRepo *repository.NotificationRepository
	)
	db, err := initDatabase(cfg)
	if err != nil {
		zlog.Warn("database unavailable, trade journal disabled", zap.Error(err))
	} else {
		defer db.Close()
		tradeRepo = repository.NewTradeRepository(db)
		notifRepo = repository.NewNotificationRepository(db)
	}

	// Восстановление состояния после рестарта
	store := bot.NewPositionStore(cfg.Bot.MaxOpenPositions, zlog)
	if positions, err := snapshots.LoadPositions(); err != nil {
		zlog.Warn("positions snapshot load failed", zap.Error(err))
	} else if len(positions) > 0 {
		store.Restore(positions)
		zlog.Info("positions restored", zap.Int("count", len(positions)))
	}

	blacklist := bot.NewBlacklist()
	if entries, err := snapshots.LoadBlacklist(); err != nil {
		zlog.Warn("blacklist snapshot load failed", zap.Error(err))
	} else if len(entries) > 0 {
		blacklist.Restore(entries, time.Now())
		zlog.Info("blacklist restored", zap.Int("count", len(entries)))
	}

	// WebSocket hub для live-обновлений фронтенда
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		websocket.SetAllowedOrigins(strings.Split(origins, ","))
	}
	hub := websocket.NewHub(zlog)
	go hub.Run()

	notifier := newEventNotifier(hub, notifRepo, store, zlog)

	// TradeRecorder через интерфейс: typed nil сюда передавать нельзя
	var trades bot.TradeRecorder
	if tradeRepo != nil {
		trades = tradeRepo
	}

	engine := bot.NewEngine(cfg, zlog, scanner, exec, store, blacklist, notifier, trades, snapshots)

	router := api.SetupRoutes(api.Dependencies{
		Config:        cfg,
		Logger:        zlog,
		Engine:        engine,
		Store:         store,
		Blacklist:     blacklist,
		Trades:        tradeRepo,
		Notifications: notifRepo,
		Hub:           hub,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go engine.Run(ctx)

	go func() {
		zlog.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown failed", zap.Error(err))
	}

	zlog.Info("stopped")
}

// initDatabase открывает подключение к PostgreSQL и проверяет его
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return db, nil
}

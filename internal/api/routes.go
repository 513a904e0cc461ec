package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"memebot/internal/api/handlers"
	"memebot/internal/api/middleware"
	"memebot/internal/bot"
	"memebot/internal/config"
	"memebot/internal/repository"
	"memebot/internal/websocket"
)

// Dependencies содержит зависимости для создания handlers.
// Репозитории могут быть nil (бот без БД) - соответствующие
// endpoints тогда не регистрируются.
type Dependencies struct {
	Config        *config.Config
	Logger        *zap.Logger
	Engine        *bot.Engine
	Store         *bot.PositionStore
	Blacklist     *bot.Blacklist
	Trades        *repository.TradeRepository
	Notifications *repository.NotificationRepository
	Hub           *websocket.Hub
}

// SetupRoutes настраивает все маршруты API
func SetupRoutes(deps Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Middleware применяются ко всем запросам в порядке регистрации
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(middleware.CORS)

	// Health check (без авторизации, для мониторинга и docker healthcheck)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// WebSocket поток событий (позиции, уведомления, статистика)
	if deps.Hub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		})
	}

	// API v1 (закрыт Bearer токеном, если задан хэш)
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(deps.Config.Security.APITokenHash, deps.Logger))

	if deps.Engine != nil {
		botHandler := handlers.NewBotHandler(deps.Engine, deps.Logger)
		api.HandleFunc("/bot/halt", botHandler.Halt).Methods("POST")
		api.HandleFunc("/bot/resume", botHandler.Resume).Methods("POST")
		api.HandleFunc("/bot/status", botHandler.Status).Methods("GET")
	}

	if deps.Store != nil && deps.Engine != nil {
		positionHandler := handlers.NewPositionHandler(deps.Store, deps.Engine, deps.Logger)
		api.HandleFunc("/positions", positionHandler.List).Methods("GET")
		api.HandleFunc("/positions/{address}", positionHandler.Get).Methods("GET")
		api.HandleFunc("/positions/{address}", positionHandler.Close).Methods("DELETE")
	}

	if deps.Blacklist != nil {
		blacklistHandler := handlers.NewBlacklistHandler(deps.Blacklist, deps.Logger)
		api.HandleFunc("/blacklist", blacklistHandler.List).Methods("GET")
		api.HandleFunc("/blacklist", blacklistHandler.Add).Methods("POST")
		api.HandleFunc("/blacklist/{address}", blacklistHandler.Remove).Methods("DELETE")
	}

	if deps.Trades != nil {
		tradeHandler := handlers.NewTradeHandler(deps.Trades, deps.Logger)
		api.HandleFunc("/trades", tradeHandler.List).Methods("GET")

		statsHandler := handlers.NewStatsHandler(deps.Trades, deps.Logger)
		api.HandleFunc("/stats/summary", statsHandler.Summary).Methods("GET")
	}

	if deps.Notifications != nil {
		notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
		api.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	}

	return router
}

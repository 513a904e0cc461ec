package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"memebot/internal/bot"
	"memebot/pkg/utils"
)

// BotControl - управление планировщиком (реализуется bot.Engine)
type BotControl interface {
	Halt()
	Resume()
	IsHalted() bool
	SnapshotStatus() bot.Status
	ClosePositionManually(ctx context.Context, address string) error
}

// BotHandler отвечает за управление торговым движком
//
// Endpoints:
// - POST /api/v1/bot/halt - остановить торговлю (открытые позиции остаются)
// - POST /api/v1/bot/resume - возобновить торговлю
// - GET /api/v1/bot/status - текущее состояние движка
type BotHandler struct {
	engine BotControl
	logger *zap.Logger
}

// NewBotHandler создает новый BotHandler
func NewBotHandler(engine BotControl, logger *zap.Logger) *BotHandler {
	return &BotHandler{engine: engine, logger: logger}
}

// statusResponse дополняет снимок движка человекочитаемым аптаймом
type statusResponse struct {
	bot.Status
	Uptime string `json:"uptime"`
}

// Halt останавливает торговлю со следующего тика
// POST /api/v1/bot/halt
func (h *BotHandler) Halt(w http.ResponseWriter, r *http.Request) {
	h.engine.Halt()
	h.logger.Info("halt requested via api", zap.String("remote", r.RemoteAddr))
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "trading halted"})
}

// Resume возобновляет торговлю
// POST /api/v1/bot/resume
func (h *BotHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.engine.Resume()
	h.logger.Info("resume requested via api", zap.String("remote", r.RemoteAddr))
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "trading resumed"})
}

// Status возвращает снимок состояния движка
// GET /api/v1/bot/status
func (h *BotHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.engine.SnapshotStatus()
	respondJSON(w, http.StatusOK, statusResponse{
		Status: status,
		Uptime: utils.FormatDuration(time.Since(status.StartedAt)),
	})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"memebot/internal/models"
	"memebot/pkg/utils"
)

// StatsStore - агрегированная статистика торговли (реализуется repository)
type StatsStore interface {
	GetSummary(ctx context.Context, since time.Time) (*models.TradeSummary, error)
}

// StatsHandler отдаёт сводку торговли
//
// Endpoints:
// - GET /api/v1/stats/summary
type StatsHandler struct {
	store  StatsStore
	logger *zap.Logger
}

// NewStatsHandler создает новый StatsHandler
func NewStatsHandler(store StatsStore, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{store: store, logger: logger}
}

// Summary возвращает агрегированную сводку; "сегодня" считается
// от начала текущих суток UTC
// GET /api/v1/stats/summary
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.GetSummary(r.Context(), utils.GetDayStart())
	if err != nil {
		h.logger.Error("summary query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: summary})
}

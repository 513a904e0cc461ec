package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"memebot/internal/models"
	"memebot/pkg/utils"
)

// TradeStore - журнал закрытых сделок (реализуется repository)
type TradeStore interface {
	GetRecent(ctx context.Context, limit int) ([]*models.TradeRecord, error)
	GetByAddress(ctx context.Context, address string, limit int) ([]*models.TradeRecord, error)
}

// TradeHandler отдаёт историю закрытых сделок из БД
//
// Endpoints:
// - GET /api/v1/trades?limit=N - последние сделки
// - GET /api/v1/trades?address=MINT - сделки по токену
type TradeHandler struct {
	store  TradeStore
	logger *zap.Logger
}

// NewTradeHandler создает новый TradeHandler
func NewTradeHandler(store TradeStore, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{store: store, logger: logger}
}

const maxTradeLimit = 1000

// List возвращает последние сделки, опционально фильтруя по адресу
// GET /api/v1/trades
func (h *TradeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 50)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if err := utils.ValidateLimit(limit, maxTradeLimit); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var trades []*models.TradeRecord
	if address := r.URL.Query().Get("address"); address != "" {
		if err := utils.ValidateMintAddress(address); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		trades, err = h.store.GetByAddress(r.Context(), address, limit)
	} else {
		trades, err = h.store.GetRecent(r.Context(), limit)
	}
	if err != nil {
		h.logger.Error("trade query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: trades})
}

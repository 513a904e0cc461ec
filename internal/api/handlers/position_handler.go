package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"memebot/internal/bot"
	"memebot/pkg/utils"
)

// PositionHandler отвечает за просмотр и ручное закрытие позиций
//
// Endpoints:
// - GET /api/v1/positions - список открытых позиций
// - GET /api/v1/positions/{address} - одна позиция
// - DELETE /api/v1/positions/{address} - принудительное закрытие по рынку
type PositionHandler struct {
	store  *bot.PositionStore
	engine BotControl
	logger *zap.Logger
}

// NewPositionHandler создает новый PositionHandler
func NewPositionHandler(store *bot.PositionStore, engine BotControl, logger *zap.Logger) *PositionHandler {
	return &PositionHandler{store: store, engine: engine, logger: logger}
}

// List возвращает все открытые позиции
// GET /api/v1/positions
func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SuccessResponse{Data: h.store.List()})
}

// Get возвращает позицию по mint адресу
// GET /api/v1/positions/{address}
func (h *PositionHandler) Get(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	p, ok := h.store.Get(address)
	if !ok {
		respondError(w, http.StatusNotFound, "position not found")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Data: p})
}

// Close принудительно закрывает позицию по текущей рыночной цене
// DELETE /api/v1/positions/{address}
func (h *PositionHandler) Close(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	if err := utils.ValidateMintAddress(address); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.store.Has(address) {
		respondError(w, http.StatusNotFound, "position not found")
		return
	}

	if err := h.engine.ClosePositionManually(r.Context(), address); err != nil {
		h.logger.Error("manual close failed",
			zap.String("address", address),
			zap.Error(err))
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.logger.Info("position closed manually via api", zap.String("address", address))
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "position closed"})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"memebot/internal/bot"
	"memebot/internal/models"
	"memebot/pkg/utils"
)

// BlacklistHandler отвечает за управление чёрным списком токенов
//
// Endpoints:
// - GET /api/v1/blacklist - активные записи
// - POST /api/v1/blacklist - ручная блокировка токена
// - DELETE /api/v1/blacklist/{address} - досрочное снятие блокировки
//
// В отличие от автоматических блокировок (провал зонда, серия неудач
// исполнения) ручные записи создаёт оператор, TTL задаётся в запросе.
type BlacklistHandler struct {
	blacklist *bot.Blacklist
	logger    *zap.Logger
}

// NewBlacklistHandler создает новый BlacklistHandler
func NewBlacklistHandler(blacklist *bot.Blacklist, logger *zap.Logger) *BlacklistHandler {
	return &BlacklistHandler{blacklist: blacklist, logger: logger}
}

// List возвращает активные записи чёрного списка
// GET /api/v1/blacklist
func (h *BlacklistHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SuccessResponse{Data: h.blacklist.List(time.Now())})
}

// addRequest - тело запроса на ручную блокировку
type addRequest struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	TTL     string `json:"ttl"` // длительность в формате Go: "24h", "30m"
}

// Add блокирует токен вручную
// POST /api/v1/blacklist
func (h *BlacklistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := utils.ValidateMintAddress(req.Address); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ttl, err := time.ParseDuration(req.TTL)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid ttl: "+err.Error())
		return
	}
	if err := utils.ValidateDuration(ttl); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	h.blacklist.Add(req.Address, req.Symbol, models.BlacklistReasonManual, ttl, now)

	h.logger.Info("token blacklisted via api",
		zap.String("address", req.Address),
		zap.Duration("ttl", ttl))

	respondJSON(w, http.StatusCreated, SuccessResponse{
		Message: "blacklisted",
		Data: models.BlacklistEntry{
			Address:   req.Address,
			Symbol:    req.Symbol,
			Reason:    models.BlacklistReasonManual,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		},
	})
}

// Remove досрочно снимает блокировку
// DELETE /api/v1/blacklist/{address}
func (h *BlacklistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	if !h.blacklist.Remove(address) {
		respondError(w, http.StatusNotFound, "address not blacklisted")
		return
	}

	h.logger.Info("blacklist entry removed via api", zap.String("address", address))
	w.WriteHeader(http.StatusNoContent)
}

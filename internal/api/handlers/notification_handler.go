package handlers

import (
	"context"
	"net/http"

	"memebot/internal/models"
	"memebot/pkg/utils"
)

// NotificationStore - журнал уведомлений (реализуется repository)
type NotificationStore interface {
	GetRecent(ctx context.Context, limit int) ([]*models.Notification, error)
	GetByType(ctx context.Context, notificationType string, limit int) ([]*models.Notification, error)
}

// NotificationHandler отдаёт историю уведомлений из БД
//
// Endpoints:
// - GET /api/v1/notifications?limit=N&type=BUY
type NotificationHandler struct {
	store NotificationStore
}

// NewNotificationHandler создает новый NotificationHandler
func NewNotificationHandler(store NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

const maxNotificationLimit = 500

// List возвращает последние уведомления, опционально фильтруя по типу
// GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 50)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if err := utils.ValidateLimit(limit, maxNotificationLimit); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var notifications []*models.Notification
	if ntype := r.URL.Query().Get("type"); ntype != "" {
		notifications, err = h.store.GetByType(r.Context(), ntype, limit)
	} else {
		notifications, err = h.store.GetRecent(r.Context(), limit)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: notifications})
}

package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"memebot/internal/bot"
	"memebot/internal/models"
	"memebot/internal/repository"
	"memebot/internal/websocket"
)

// eventNotifier доставляет события движка подписчикам:
// пишет в журнал БД (если она есть) и рассылает по websocket
// вместе со свежим списком позиций.
type eventNotifier struct {
	hub    *websocket.Hub
	repo   *repository.NotificationRepository
	store  *bot.PositionStore
	logger *zap.Logger
}

func newEventNotifier(hub *websocket.Hub, repo *repository.NotificationRepository, store *bot.PositionStore, logger *zap.Logger) *eventNotifier {
	return &eventNotifier{hub: hub, repo: repo, store: store, logger: logger}
}

// Notify реализует bot.Notifier
func (n *eventNotifier) Notify(notif *models.Notification) {
	if n.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := n.repo.Create(ctx, notif); err != nil {
			n.logger.Error("notification persist failed", zap.Error(err))
		}
		cancel()
	}

	if n.hub != nil {
		n.hub.BroadcastNotification(notif)
		n.hub.BroadcastPositionUpdate(n.store.List())
	}
}

// Package websocket раздаёт события бота подключенным клиентам:
// обновления позиций, уведомления и статус планировщика.
package websocket

import (
	"time"

	"memebot/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypePositionUpdate - снимок открытых позиций
	// Отправляется после каждого изменения хранилища позиций
	MessageTypePositionUpdate MessageType = "positionUpdate"

	// MessageTypeNotification - новое уведомление
	// Отправляется при событиях: покупка, продажа, провал зонда, чёрный список
	MessageTypeNotification MessageType = "notification"

	// MessageTypeStatusUpdate - статус планировщика
	// Отправляется после каждого тика и при halt/resume
	MessageTypeStatusUpdate MessageType = "statusUpdate"

	// MessageTypeStatsUpdate - агрегированная статистика торговли
	// Отправляется после закрытия сделки
	MessageTypeStatsUpdate MessageType = "statsUpdate"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// PositionUpdateMessage - сообщение со снимком открытых позиций
type PositionUpdateMessage struct {
	BaseMessage
	Positions []models.Position `json:"positions"`
}

// NotificationMessage - сообщение о новом уведомлении
type NotificationMessage struct {
	BaseMessage
	Data *models.Notification `json:"data"`
}

// StatusUpdateMessage - сообщение о статусе планировщика
type StatusUpdateMessage struct {
	BaseMessage
	Data interface{} `json:"data"`
}

// StatsUpdateMessage - сообщение со статистикой торговли
type StatsUpdateMessage struct {
	BaseMessage
	Data *models.TradeSummary `json:"data"`
}

// ============ Фабричные функции для создания сообщений ============

// NewPositionUpdateMessage создает сообщение со снимком позиций
func NewPositionUpdateMessage(positions []models.Position) *PositionUpdateMessage {
	return &PositionUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePositionUpdate,
			Timestamp: time.Now(),
		},
		Positions: positions,
	}
}

// NewNotificationMessage создает сообщение уведомления
func NewNotificationMessage(notif *models.Notification) *NotificationMessage {
	return &NotificationMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeNotification,
			Timestamp: time.Now(),
		},
		Data: notif,
	}
}

// NewStatusUpdateMessage создает сообщение статуса
func NewStatusUpdateMessage(status interface{}) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeStatusUpdate,
			Timestamp: time.Now(),
		},
		Data: status,
	}
}

// NewStatsUpdateMessage создает сообщение статистики
func NewStatsUpdateMessage(summary *models.TradeSummary) *StatsUpdateMessage {
	return &StatsUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeStatsUpdate,
			Timestamp: time.Now(),
		},
		Data: summary,
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/goroutine"
	"github.com/dkoroteev/eventcrew-backend/internal/logger"
)

// notifyAsync сохраняет уведомление и рассылает его по WebSocket в фоне.
// Ошибки уведомлений логируются и не прерывают основную операцию.
func notifyAsync(notifications *NotificationService, hub WSNotifier, userID uuid.UUID, event string, data interface{}) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if notifications != nil {
			if _, err := notifications.CreateNotification(ctx, userID, event, data); err != nil {
				logger.Log.WithField("event", event).Warnf("notify: уведомление не сохранено: %v", err)
			}
		}
		if hub != nil {
			if err := hub.BroadcastToUser(userID, event, data); err != nil {
				logger.Log.WithField("event", event).Warnf("notify: уведомление не доставлено: %v", err)
			}
		}
	})
}

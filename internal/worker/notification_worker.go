package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/fleet-service/internal/api/ws"
	"github.com/spec-kit/fleet-service/internal/service"
)

// StartNotificationWorker registers notification event handlers and runs
// the websocket fan-out hub until the context ends.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, hub *ws.Hub, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()

	go func() {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("notification hub stopped", zap.Error(err))
		}
	}()
}

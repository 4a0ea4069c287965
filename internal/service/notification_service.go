package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/fleet-service/internal/config"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/events"
	"github.com/spec-kit/fleet-service/internal/repository"
)

// NotificationService turns domain events into persisted notifications and
// publishes them on per-user redis channels for the live stream.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	users         repository.UserRepository
	publisher     *redis.Client
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(
	dispatcher events.Dispatcher,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	publisher *redis.Client,
	logger *zap.Logger,
	cfg config.NotificationConfig,
) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		notifications: notifications,
		users:         users,
		publisher:     publisher,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventInspectionCompleted, n.handleInspectionCompleted)
	n.dispatcher.Subscribe(events.EventShipmentStatusChanged, n.handleShipmentStatusChanged)
	n.dispatcher.Subscribe(events.EventTripAssigned, n.handleTripAssigned)
}

// ListForUser returns a user's notifications.
func (n *NotificationService) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*domain.Notification, error) {
	return n.notifications.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks one of the user's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	return n.notifications.MarkRead(ctx, id, userID)
}

func (n *NotificationService) handleInspectionCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.InspectionCompletedPayload)
	if !ok {
		return nil
	}
	// Passing inspections are routine; only failures need attention.
	if payload.Result == domain.InspectionResultPass {
		return nil
	}

	managers, err := n.users.ListByRole(ctx, domain.RoleManager)
	if err != nil {
		n.logger.Warn("list managers for inspection notification", zap.Error(err))
		return err
	}
	for _, manager := range managers {
		n.deliver(ctx, &domain.Notification{
			UserID:  manager.ID,
			Kind:    domain.NotificationInspectionCompleted,
			Subject: fmt.Sprintf("Vehicle %s inspection: %s", payload.VehiclePlate, payload.Result),
			Body:    fmt.Sprintf("Inspection %d on vehicle %d finished with result %s", payload.InspectionID, payload.VehicleID, payload.Result),
		})
	}
	return nil
}

func (n *NotificationService) handleShipmentStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ShipmentStatusChangedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, &domain.Notification{
		UserID:  payload.OwnerID,
		Kind:    domain.NotificationShipmentStatusChanged,
		Subject: fmt.Sprintf("Shipment %s is now %s", payload.Reference, payload.NewStatus),
		Body:    fmt.Sprintf("Shipment %s moved from %s to %s", payload.Reference, payload.OldStatus, payload.NewStatus),
	})
	return nil
}

func (n *NotificationService) handleTripAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TripAssignedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, &domain.Notification{
		UserID:  payload.DriverID,
		Kind:    domain.NotificationTripAssigned,
		Subject: "New trip assigned",
		Body:    fmt.Sprintf("You were assigned trip %d for shipment %d with vehicle %d", payload.TripID, payload.ShipmentID, payload.VehicleID),
	})
	return nil
}

// notificationMessage is the wire shape pushed over redis to the websocket
// hub.
type notificationMessage struct {
	ID        int64                   `json:"id"`
	UserID    int64                   `json:"user_id"`
	Kind      domain.NotificationKind `json:"kind"`
	Subject   string                  `json:"subject"`
	Body      string                  `json:"body"`
	CreatedAt string                  `json:"created_at"`
}

// deliver persists the notification and publishes it for live streaming.
// Either step failing is logged; notifications are best-effort and never
// fail the operation that triggered them.
func (n *NotificationService) deliver(ctx context.Context, notification *domain.Notification) {
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("persist notification", zap.Int64("user_id", notification.UserID), zap.Error(err))
		return
	}

	if n.publisher == nil {
		return
	}
	payload, err := json.Marshal(notificationMessage{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Kind:      notification.Kind,
		Subject:   notification.Subject,
		Body:      notification.Body,
		CreatedAt: notification.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		n.logger.Warn("encode notification", zap.Error(err))
		return
	}
	channel := fmt.Sprintf("%s%d", n.cfg.ChannelPrefix, notification.UserID)
	if err := n.publisher.Publish(ctx, channel, payload).Err(); err != nil {
		n.logger.Warn("publish notification", zap.String("channel", channel), zap.Error(err))
	}
}

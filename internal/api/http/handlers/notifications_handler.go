package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/service"
	apperrors "github.com/spec-kit/fleet-service/pkg/util/errorutil"
)

// NotificationsHandler exposes stored notification endpoints; the live
// stream is served by the websocket handler.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs the handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	unreadOnly := c.QueryBool("unread")
	notifications, err := h.notifications.ListForUser(c.Context(), principal.User.ID, unreadOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": notifications})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Context(), id, principal.User.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", nil)
		}
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

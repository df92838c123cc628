package handler

import (
	"log"
	"strconv"

	"sharemarket-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifSvc *service.NotificationService
}

func NewNotificationHandler(notifSvc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

// GET /api/v1/notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	unreadOnly := c.Query("unread") == "true"

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	notifs, err := h.notifSvc.List(c.Context(), userID, unreadOnly, limit, offset)
	if err != nil {
		log.Printf("[NOTIFY] list error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list notifications"})
	}

	unread, err := h.notifSvc.CountUnread(c.Context(), userID)
	if err != nil {
		log.Printf("[NOTIFY] unread count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to count notifications"})
	}

	return c.JSON(fiber.Map{
		"notifications": notifs,
		"unread":        unread,
	})
}

// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.notifSvc.MarkRead(c.Context(), c.Params("id"), userID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "notification not found"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.notifSvc.MarkAllRead(c.Context(), userID); err != nil {
		log.Printf("[NOTIFY] mark-all-read error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to mark notifications read"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

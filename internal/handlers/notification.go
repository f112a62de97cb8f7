package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/omengineers/booking-backend/internal/middleware"
	"github.com/omengineers/booking-backend/internal/services"
	"github.com/omengineers/booking-backend/internal/storage"
)

// Idle stream connections get a keepalive frame at this cadence so dead
// transports are detected and proxies do not time the connection out.
const streamKeepaliveInterval = 30 * time.Second

const defaultNotificationLimit = 50

// NotificationHandler serves the per-customer notification inbox and
// the push stream.
type NotificationHandler struct {
	store       storage.Store
	broadcaster *services.Broadcaster
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(store storage.Store, broadcaster *services.Broadcaster) *NotificationHandler {
	return &NotificationHandler{
		store:       store,
		broadcaster: broadcaster,
	}
}

// List handles GET /api/notifications?limit=N, newest first
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	limit := c.QueryInt("limit", defaultNotificationLimit)
	notifications, err := h.store.GetNotificationsByCustomer(customer.ID, limit)
	if err != nil {
		return serverError(c, "Error getting notifications")
	}

	unread, err := h.store.GetUnreadCount(customer.ID)
	if err != nil {
		return serverError(c, "Error getting notifications")
	}

	payload := make([]map[string]interface{}, 0, len(notifications))
	for _, notification := range notifications {
		payload = append(payload, notification.ToResponse())
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": payload,
		"unread_count":  unread,
	})
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	unread, err := h.store.GetUnreadCount(customer.ID)
	if err != nil {
		return serverError(c, "Error getting notification count")
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"unread_count": unread,
	})
}

// MarkRead handles POST /api/notifications/:id/mark-read. The lookup is
// scoped to the caller, so another customer's notification reads as
// absent rather than forbidden.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid notification id",
			"error_code": services.CodeInvalidInput,
		})
	}

	err = h.store.MarkNotificationRead(uint(id), customer.ID)
	if err == storage.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success":    false,
			"message":    "Notification not found",
			"error_code": services.CodeNotFound,
		})
	}
	if err != nil {
		return serverError(c, "Error marking notification as read")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notification marked as read",
	})
}

// MarkAllRead handles POST /api/notifications/mark-all-read as a single
// bulk update; repeating it is a no-op.
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	if err := h.store.MarkAllNotificationsRead(customer.ID); err != nil {
		return serverError(c, "Error marking all notifications as read")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "All notifications marked as read",
	})
}

// Stream handles GET /api/notifications/stream: a long-lived connection
// that pushes update-available events as newline-delimited JSON frames.
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)
	customerID := customer.ID

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Access-Control-Allow-Origin", "*")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		events, cancel := h.broadcaster.Subscribe(customerID)
		defer cancel()
		streamEvents(w, customerID, events, streamKeepaliveInterval)
	})

	return nil
}

// streamEvents writes the connected frame, then forwards events and
// periodic keepalives until the connection dies or the event source is
// closed.
func streamEvents(w *bufio.Writer, customerID uint, events <-chan services.Event, keepaliveInterval time.Duration) {
	if err := writeEvent(w, services.Event{
		Type:       services.EventConnected,
		CustomerID: customerID,
	}); err != nil {
		return
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, event); err != nil {
				return
			}
		case <-keepalive.C:
			err := writeEvent(w, services.Event{
				Type:      services.EventKeepalive,
				Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
			})
			if err != nil {
				// Client went away; registration cleanup happens in
				// the caller's deferred cancel
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, event services.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode stream event: %v", err)
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

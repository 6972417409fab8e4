package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dantegr/pickndeal-backend/internal/models"
	"github.com/dantegr/pickndeal-backend/internal/service"
)

type NotificationHandler struct {
	svc *service.NotificationService
	log *zap.SugaredLogger
}

func NewNotificationHandler(svc *service.NotificationService, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log}
}

// Create handles POST /api/notifications. Kept for internal callers that
// raise notifications outside the message path.
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"userId"`
		Type   string `json:"type"`
		Data   struct {
			SenderID   string `json:"senderId"`
			SenderName string `json:"senderName"`
			Message    string `json:"message"`
		} `json:"data"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}
	userID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid user id"})
	}
	senderID, err := primitive.ObjectIDFromHex(body.Data.SenderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid sender id"})
	}

	n, err := h.svc.Create(c.Context(), userID, body.Type, models.ChatNotificationData{
		SenderID:   senderID,
		SenderName: body.Data.SenderName,
		Message:    body.Data.Message,
	})
	if err != nil {
		return respondError(c, h.log, err, "Notification not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": n})
}

func pageParams(c *fiber.Ctx) (page, limit int64) {
	page = int64(c.QueryInt("page", 1))
	if page < 1 {
		page = 1
	}
	limit = int64(c.QueryInt("limit", 20))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// List handles GET /api/notifications?page=&limit=&unreadOnly=.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	page, limit := pageParams(c)
	unreadOnly := c.Query("unreadOnly") == "true"

	res, err := h.svc.ListForUser(c.Context(), caller, page, limit, unreadOnly)
	if err != nil {
		return respondError(c, h.log, err, "Notification not found")
	}
	totalPages := res.TotalCount / limit
	if res.TotalCount%limit != 0 {
		totalPages++
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"data":        res.Items,
		"totalPages":  totalPages,
		"currentPage": page,
		"totalCount":  res.TotalCount,
		"unreadCount": res.UnreadCount,
	})
}

// ListUnread handles GET /api/notifications/unread.
func (h *NotificationHandler) ListUnread(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	page, limit := pageParams(c)

	res, err := h.svc.ListForUser(c.Context(), caller, page, limit, true)
	if err != nil {
		return respondError(c, h.log, err, "Notification not found")
	}
	totalPages := res.UnreadCount / limit
	if res.UnreadCount%limit != 0 {
		totalPages++
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"data":        res.Items,
		"totalPages":  totalPages,
		"currentPage": page,
		"totalCount":  res.UnreadCount,
	})
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	count, err := h.svc.UnreadCount(c.Context(), caller)
	if err != nil {
		return respondError(c, h.log, err, "Notification not found")
	}
	return c.JSON(fiber.Map{"success": true, "unreadCount": count})
}

// MarkAllRead handles PUT /api/notifications/mark-all-read.
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	modified, err := h.svc.MarkAllRead(c.Context(), caller)
	if err != nil {
		return respondError(c, h.log, err, "Notification not found")
	}
	return c.JSON(fiber.Map{"success": true, "modifiedCount": modified})
}

// MarkRead handles PUT /api/notifications/:id.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid notification id"})
	}
	n, err := h.svc.MarkRead(c.Context(), id, caller)
	if err != nil {
		return respondError(c, h.log, err, "Notification not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": n})
}

// Delete handles DELETE /api/notifications/:id.
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid notification id"})
	}
	if err := h.svc.Delete(c.Context(), id, caller); err != nil {
		return respondError(c, h.log, err, "Notification not found")
	}
	return c.JSON(fiber.Map{"success": true, "message": "notification deleted"})
}

// DeleteAll handles DELETE /api/notifications/all.
func (h *NotificationHandler) DeleteAll(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	deleted, err := h.svc.DeleteAll(c.Context(), caller)
	if err != nil {
		return respondError(c, h.log, err, "Notification not found")
	}
	return c.JSON(fiber.Map{"success": true, "deletedCount": deleted})
}

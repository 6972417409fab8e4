package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dantegr/pickndeal-backend/internal/apperrors"
	"github.com/dantegr/pickndeal-backend/internal/middleware"
	"github.com/dantegr/pickndeal-backend/internal/service"
)

type ChatHandler struct {
	svc *service.ChatService
	log *zap.SugaredLogger
}

func NewChatHandler(svc *service.ChatService, log *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{svc: svc, log: log}
}

func callerID(c *fiber.Ctx) (primitive.ObjectID, error) {
	hex, _ := c.Locals(middleware.CallerIDKey).(string)
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errors.New("missing caller identity")
	}
	return id, nil
}

func respondError(c *fiber.Ctx, log *zap.SugaredLogger, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	case apperrors.IsNotFoundOrForbidden(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": notFoundMsg})
	default:
		log.Errorf("request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "internal server error"})
	}
}

// GetChatHistory handles GET /api/chat/history/:receiverId.
func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	peer, err := primitive.ObjectIDFromHex(c.Params("receiverId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid receiver id"})
	}

	history, err := h.svc.GetChatHistory(c.Context(), caller, peer)
	if err != nil {
		return respondError(c, h.log, err, "Chat not found")
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"chatId":       history.Chat.ID,
		"chat":         history.Chat,
		"messages":     history.Messages,
		"participants": history.Participants,
	})
}

// GetUserChats handles GET /api/chat/list.
func (h *ChatHandler) GetUserChats(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	chats, err := h.svc.GetUserChats(c.Context(), caller)
	if err != nil {
		return respondError(c, h.log, err, "Chat not found")
	}
	return c.JSON(fiber.Map{"success": true, "chats": chats})
}

// MarkMessagesAsRead handles PUT /api/chat/:chatId/read.
func (h *ChatHandler) MarkMessagesAsRead(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	chatID, err := primitive.ObjectIDFromHex(c.Params("chatId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid chat id"})
	}

	updated, err := h.svc.MarkMessagesAsRead(c.Context(), caller, chatID)
	if err != nil {
		return respondError(c, h.log, err, "Chat not found")
	}
	return c.JSON(fiber.Map{"success": true, "updated": updated})
}

// GetUnreadCount handles GET /api/chat/unread-count.
func (h *ChatHandler) GetUnreadCount(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	count, err := h.svc.GetUnreadCount(c.Context(), caller)
	if err != nil {
		return respondError(c, h.log, err, "Chat not found")
	}
	return c.JSON(fiber.Map{"success": true, "count": count})
}

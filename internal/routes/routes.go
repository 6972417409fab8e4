package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/dantegr/pickndeal-backend/internal/config"
	"github.com/dantegr/pickndeal-backend/internal/handlers"
	"github.com/dantegr/pickndeal-backend/internal/middleware"
	"github.com/dantegr/pickndeal-backend/internal/ws"
)

// Register mounts the realtime gateway and the REST surface.
func Register(app *fiber.App, cfg *config.Config, gw *ws.Gateway, ch *handlers.ChatHandler, nh *handlers.NotificationHandler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(gw.HandleWS()))

	api := app.Group("/api", middleware.Protect(cfg.JWT.Secret))

	chat := api.Group("/chat")
	chat.Get("/history/:receiverId", ch.GetChatHistory)
	chat.Get("/list", ch.GetUserChats)
	chat.Get("/unread-count", ch.GetUnreadCount)
	chat.Put("/:chatId/read", ch.MarkMessagesAsRead)

	notif := api.Group("/notifications")
	notif.Post("/", nh.Create)
	notif.Get("/unread-count", nh.UnreadCount)
	notif.Get("/unread", nh.ListUnread)
	notif.Get("/", nh.List)
	notif.Put("/mark-all-read", nh.MarkAllRead)
	notif.Put("/:id", nh.MarkRead)
	notif.Delete("/all", nh.DeleteAll)
	notif.Delete("/:id", nh.Delete)
}

package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dantegr/pickndeal-backend/internal/config"
	"github.com/dantegr/pickndeal-backend/internal/events"
	"github.com/dantegr/pickndeal-backend/internal/models"
	"github.com/dantegr/pickndeal-backend/internal/presence"
	"github.com/dantegr/pickndeal-backend/internal/repository"
)

// Gateway routes realtime events between connected clients and the chat
// store. Persistence is the durability boundary: once the sender is acked,
// the message survives regardless of whether the receiver was reachable.
type Gateway struct {
	chats    repository.ChatRepository
	notifs   repository.NotificationRepository
	users    repository.UserRepository
	registry *presence.Registry
	status   *presence.StatusStore
	producer events.Publisher
	cfg      *config.Config
	log      *zap.SugaredLogger
}

func NewGateway(
	chats repository.ChatRepository,
	notifs repository.NotificationRepository,
	users repository.UserRepository,
	registry *presence.Registry,
	status *presence.StatusStore,
	producer events.Publisher,
	cfg *config.Config,
	log *zap.SugaredLogger,
) *Gateway {
	return &Gateway{
		chats:    chats,
		notifs:   notifs,
		users:    users,
		registry: registry,
		status:   status,
		producer: producer,
		cfg:      cfg,
		log:      log,
	}
}

// HandleWS is the fiber websocket handler. The userId query parameter is
// trusted at the transport layer; connections without it stay anonymous and
// are never registered for push delivery.
func (g *Gateway) HandleWS() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		userID := conn.Query("userId")
		client := NewClient(conn, userID, g.cfg.WS.SendBufferSize)

		if userID != "" {
			g.registry.Register(userID, client)
			g.status.SetOnline(context.Background(), userID)
			g.broadcastStatus(userID, "online")
			g.log.Infof("user %s registered on connection %s", userID, client.ID())
		} else {
			g.log.Debugf("anonymous connection %s accepted", client.ID())
		}

		go client.WritePump(g.cfg.PingInterval, g.cfg.WriteDeadline)

		conn.SetReadLimit(g.cfg.WS.MaxMessageSizeBytes)
		_ = conn.SetReadDeadline(time.Now().Add(g.cfg.ReadDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(g.cfg.ReadDeadline))
		})

		for {
			mt, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if mt != websocket.TextMessage {
				continue
			}
			g.dispatch(client, raw)
		}

		client.Close()
		if userID != "" {
			// a newer connection for the same user must not be evicted
			if g.registry.Unregister(userID, client.ID()) {
				g.status.SetOffline(context.Background(), userID)
				g.broadcastStatus(userID, "offline")
				g.log.Infof("user %s disconnected", userID)
			}
		}
	}
}

// dispatch routes one inbound event. A bad event is contained to its own
// connection and never takes the gateway down.
func (g *Gateway) dispatch(src presence.Conn, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Errorf("panic while handling event on connection %s: %v", src.ID(), r)
		}
	}()

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.log.Debugf("dropping malformed frame on connection %s: %v", src.ID(), err)
		return
	}

	switch env.Event {
	case EventSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			g.emitError(src, "", "invalid send_message payload")
			return
		}
		g.handleSendMessage(src, p)
	case EventTypingStart:
		g.handleTyping(env.Data, true)
	case EventTypingStop:
		g.handleTyping(env.Data, false)
	default:
		g.log.Debugf("ignoring unknown event %q on connection %s", env.Event, src.ID())
	}
}

func (g *Gateway) handleSendMessage(src presence.Conn, p SendMessagePayload) {
	ctx := context.Background()

	if strings.TrimSpace(p.Message.TextContent) == "" {
		g.emitError(src, p.TempID, "message text must not be empty")
		return
	}
	senderID, err := primitive.ObjectIDFromHex(p.SenderID)
	if err != nil {
		g.emitError(src, p.TempID, "invalid sender id")
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(p.ReceiverID)
	if err != nil {
		g.emitError(src, p.TempID, "invalid receiver id")
		return
	}

	chat, err := g.chats.FindOrCreateChat(ctx, senderID, receiverID)
	if err != nil {
		g.log.Errorf("find-or-create chat %s<->%s failed: %v", p.SenderID, p.ReceiverID, err)
		g.emitError(src, p.TempID, "failed to send message")
		return
	}
	msg, err := g.chats.AppendMessage(ctx, chat, senderID, receiverID, p.Message.TextContent)
	if err != nil {
		g.log.Errorf("append message to chat %s failed: %v", chat.ID.Hex(), err)
		g.emitError(src, p.TempID, "failed to send message")
		return
	}

	// durable from here on; everything below is best-effort
	if g.producer != nil {
		evt := events.MessagePersistedEvent{
			MessageID:  msg.ID.Hex(),
			ChatID:     chat.ID.Hex(),
			SenderID:   p.SenderID,
			ReceiverID: p.ReceiverID,
			DateSent:   msg.DateSent,
		}
		if err := g.producer.MessagePersisted(ctx, evt); err != nil {
			g.log.Warnf("publish message event for %s failed: %v", msg.ID.Hex(), err)
		}
	}

	sender, err := g.users.FindPublicByID(ctx, senderID)
	if err != nil {
		g.log.Debugf("sender %s profile lookup failed: %v", p.SenderID, err)
	}
	out := &OutgoingMessage{Message: *msg, Sender: sender}

	var notif *models.Notification
	notif, err = g.notifs.Create(ctx, receiverID, models.NotificationTypeChat, models.ChatNotificationData{
		SenderID:   senderID,
		SenderName: sender.DisplayName(),
		Message:    msg.TextContent,
	})
	if err != nil {
		// non-critical side channel, the message itself is already durable
		g.log.Warnf("notification for user %s failed: %v", p.ReceiverID, err)
		notif = nil
	}

	if rc, ok := g.registry.Lookup(p.ReceiverID); ok {
		g.emit(rc, EventNewMessage, NewMessagePayload{
			ChatID:    chat.ID.Hex(),
			Message:   out,
			SenderID:  p.SenderID,
			Timestamp: msg.DateSent,
		})
		if notif != nil {
			g.emit(rc, EventNotificationCreated, NotificationCreatedPayload{
				Notification: notif,
				SenderID:     p.SenderID,
				Timestamp:    msg.DateSent,
			})
		}
	}

	g.emit(src, EventMessageSent, MessageSentPayload{
		ChatID:  chat.ID.Hex(),
		Message: out,
		TempID:  p.TempID,
	})
}

// handleTyping forwards the indicator to the addressed peer's current
// connection. Unpersisted, no-op when the peer is offline.
func (g *Gateway) handleTyping(data json.RawMessage, isTyping bool) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	rc, ok := g.registry.Lookup(p.ReceiverID)
	if !ok {
		return
	}
	g.emit(rc, EventUserTyping, UserTypingPayload{UserID: p.UserID, IsTyping: isTyping})
}

func (g *Gateway) broadcastStatus(userID, status string) {
	payload, err := marshalEvent(EventUserStatus, UserStatusPayload{
		UserID:    userID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		g.log.Errorf("marshal user_status: %v", err)
		return
	}
	g.registry.Broadcast(payload)
}

func (g *Gateway) emit(c presence.Conn, event string, data any) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		g.log.Errorf("marshal %s event: %v", event, err)
		return
	}
	if !c.Enqueue(payload) {
		g.log.Debugf("dropped %s event for connection %s", event, c.ID())
	}
}

func (g *Gateway) emitError(c presence.Conn, tempID, msg string) {
	g.emit(c, EventMessageError, MessageErrorPayload{Error: msg, TempID: tempID})
}

func marshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

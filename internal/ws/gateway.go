package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trailmarket/internal/config"
	"trailmarket/internal/domain"
	"trailmarket/internal/metrics"
)

// Inbound events.
const (
	EventJoinChat         = "joinChat"
	EventBroadcastMessage = "broadcastMessage"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventMarkAsRead       = "markAsRead"
	EventMarkChatAsRead   = "markChatAsRead"
)

// Outbound events.
const (
	EventReceiveMessage    = "receiveMessage"
	EventUserTyping        = "userTyping"
	EventUserStoppedTyping = "userStoppedTyping"
	EventMessageRead       = "messageRead"
	EventChatRead          = "chatRead"
)

// Gateway upgrades websocket connections and routes chat events between
// clients. Message persistence happens over REST; the gateway only relays
// and records read receipts and typing state.
type Gateway struct {
	hub      *Hub
	chats    domain.ChatService
	state    domain.StateRepository
	cfg      config.GatewayConfig
	upgrader websocket.Upgrader
	logger   *zerolog.Logger
}

func NewGateway(hub *Hub, chats domain.ChatService, state domain.StateRepository, cfg config.GatewayConfig, logger *zerolog.Logger) *Gateway {
	return &Gateway{
		hub:   hub,
		chats: chats,
		state: state,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from any origin; auth happens upstream.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP handles GET /ws?userId=N.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(g, conn, userID)
	metrics.WSConnected()
	g.logger.Info().Str("client_id", client.id).Int64("user_id", userID).Msg("client connected")

	go client.writePump()
	go client.readPump()
}

func (g *Gateway) disconnect(client *Client) {
	// RemoveClient also closes the send channel, under the hub lock.
	g.hub.RemoveClient(client)
	metrics.WSDisconnected()
	g.logger.Info().Str("client_id", client.id).Int64("user_id", client.userID).Msg("client disconnected")
}

type chatUserPayload struct {
	ChatID int64 `json:"chatId"`
	UserID int64 `json:"userId"`
}

type markAsReadPayload struct {
	MessageID int64 `json:"messageId"`
	ChatID    int64 `json:"chatId"`
	UserID    int64 `json:"userId"`
}

// dispatch routes one inbound frame. Handler errors are logged and the
// connection stays open; a malformed frame never kills the session.
func (g *Gateway) dispatch(client *Client, env Envelope) {
	metrics.IncWSEvent(env.Event)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	allowed, err := g.state.CheckRateLimit(ctx, client.userID, g.cfg.RateLimitEvents, time.Duration(g.cfg.RateLimitWindow)*time.Second)
	if err != nil {
		g.logger.Warn().Err(err).Msg("rate limit check failed")
	} else if !allowed {
		g.logger.Warn().Int64("user_id", client.userID).Str("event", env.Event).Msg("socket rate limit exceeded, dropping event")
		return
	}

	switch env.Event {
	case EventJoinChat:
		g.handleJoinChat(client, env.Data)
	case EventBroadcastMessage:
		g.handleBroadcastMessage(env.Data)
	case EventTyping:
		g.handleTyping(ctx, client, env.Data)
	case EventStopTyping:
		g.handleStopTyping(ctx, client, env.Data)
	case EventMarkAsRead:
		g.handleMarkAsRead(ctx, env.Data)
	case EventMarkChatAsRead:
		g.handleMarkChatAsRead(ctx, env.Data)
	default:
		g.logger.Debug().Str("event", env.Event).Msg("unknown socket event")
	}
}

func (g *Gateway) handleJoinChat(client *Client, data json.RawMessage) {
	var chatID int64
	if err := json.Unmarshal(data, &chatID); err != nil {
		g.logger.Warn().Err(err).Msg("joinChat: bad payload")
		return
	}
	g.hub.Join(chatID, client)
}

// handleBroadcastMessage relays an already persisted message to the room.
// The client saves via REST first, then emits; relaying here again would
// double-write, so no persistence happens.
func (g *Gateway) handleBroadcastMessage(data json.RawMessage) {
	var probe struct {
		ChatID int64 `json:"chatId"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.ChatID == 0 {
		g.logger.Warn().Err(err).Msg("broadcastMessage: bad payload")
		return
	}

	frame, err := newEnvelope(EventReceiveMessage, data)
	if err != nil {
		g.logger.Warn().Err(err).Msg("broadcastMessage: encode failed")
		return
	}
	g.hub.Broadcast(probe.ChatID, frame)
}

func (g *Gateway) handleTyping(ctx context.Context, client *Client, data json.RawMessage) {
	var payload chatUserPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.logger.Warn().Err(err).Msg("typing: bad payload")
		return
	}

	if err := g.state.SetTyping(ctx, payload.ChatID, payload.UserID, time.Duration(g.cfg.TypingTTL)*time.Second); err != nil {
		g.logger.Warn().Err(err).Msg("typing: state update failed")
	}

	frame, err := newEnvelope(EventUserTyping, payload)
	if err != nil {
		return
	}
	g.hub.BroadcastExcept(payload.ChatID, client, frame)
}

func (g *Gateway) handleStopTyping(ctx context.Context, client *Client, data json.RawMessage) {
	var payload chatUserPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.logger.Warn().Err(err).Msg("stopTyping: bad payload")
		return
	}

	if err := g.state.ClearTyping(ctx, payload.ChatID, payload.UserID); err != nil {
		g.logger.Warn().Err(err).Msg("stopTyping: state update failed")
	}

	frame, err := newEnvelope(EventUserStoppedTyping, payload)
	if err != nil {
		return
	}
	g.hub.BroadcastExcept(payload.ChatID, client, frame)
}

func (g *Gateway) handleMarkAsRead(ctx context.Context, data json.RawMessage) {
	var payload markAsReadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.logger.Warn().Err(err).Msg("markAsRead: bad payload")
		return
	}

	message, err := g.chats.MarkMessageRead(ctx, payload.MessageID, payload.UserID)
	if err != nil {
		g.logger.Warn().Err(err).Int64("message_id", payload.MessageID).Msg("markAsRead failed")
		return
	}

	frame, err := newEnvelope(EventMessageRead, message)
	if err != nil {
		return
	}
	g.hub.Broadcast(payload.ChatID, frame)
}

func (g *Gateway) handleMarkChatAsRead(ctx context.Context, data json.RawMessage) {
	var payload chatUserPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.logger.Warn().Err(err).Msg("markChatAsRead: bad payload")
		return
	}

	if err := g.chats.MarkChatRead(ctx, payload.ChatID, payload.UserID); err != nil {
		g.logger.Warn().Err(err).Int64("chat_id", payload.ChatID).Msg("markChatAsRead failed")
		return
	}

	frame, err := newEnvelope(EventChatRead, payload)
	if err != nil {
		return
	}
	g.hub.Broadcast(payload.ChatID, frame)
}

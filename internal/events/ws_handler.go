package events

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/server"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// FeedHandler serves the read-only question event feed.
type FeedHandler struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

func NewFeedHandler(hub *ws.Hub, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{hub: hub, logger: logger.With().Str("component", "question_feed").Logger()}
}

// HandleWebSocket upgrades the request and streams bank events until the client leaves.
func (h *FeedHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := ws.NewConnection(conn, h.logger)
	id := h.hub.Register(c)
	go c.WritePump()

	// clients only ping; everything else is rejected
	c.ReadPump(func(msg ws.Message) error {
		if msg.Type == ws.TypePing {
			return c.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
		}
		reply, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: "unknown_message_type", Message: "feed is read-only"})
		if err != nil {
			return err
		}
		reply.RequestID = msg.RequestID
		return c.Send(reply)
	})
	h.hub.Unregister(id)
}

package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/router"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one player's websocket connection. The read pump decodes
// inbound command envelopes into router calls; the write pump serializes
// the player's outbound event subscription back onto the wire.
type Client struct {
	playerID model.PlayerID
	conn     *websocket.Conn
	events   <-chan model.Event
	router   *router.Router
	logger   *slog.Logger
}

// NewClient wires a websocket connection to the command router
func NewClient(playerID model.PlayerID, conn *websocket.Conn, events <-chan model.Event, r *router.Router, logger *slog.Logger) *Client {
	return &Client{
		playerID: playerID,
		conn:     conn,
		events:   events,
		router:   r,
		logger: logger.With(
			slog.String("component", "ws"),
			slog.String("player_id", string(playerID)),
		),
	}
}

// ReadPump decodes inbound frames until the connection drops, then runs
// disconnection cleanup. Malformed frames are logged and skipped, never
// fatal.
func (c *Client) ReadPump() {
	defer func() {
		c.router.Disconnect(context.Background(), c.playerID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.logger.Warn("unexpected connection close", slog.String("error", err.Error()))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Debug("malformed command frame", slog.String("error", err.Error()))
			continue
		}
		c.dispatch(env)
	}
}

// WritePump serializes outbound events and keeps the connection alive with
// pings. It exits when the subscription channel closes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.events:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame := OutboundEnvelope{Type: event.EventType(), Payload: event}
			if err := c.conn.WriteJSON(frame); err != nil {
				c.logger.Debug("write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one decoded command to the router
func (c *Client) dispatch(env Envelope) {
	ctx := context.Background()

	switch env.Type {
	case CommandJoinRoom:
		var p JoinRoomPayload
		if !c.decode(env.Payload, &p) {
			return
		}
		c.router.Join(ctx, c.playerID, p.RoomName, p.PlayerName)

	case CommandLeaveRoom:
		c.router.Leave(ctx, c.playerID)

	case CommandPaddleMove:
		var p PaddleMovePayload
		if !c.decode(env.Payload, &p) {
			return
		}
		c.router.MovePaddle(ctx, c.playerID, p.PaddleY)

	case CommandPlayerReady:
		var p PlayerReadyPayload
		if !c.decode(env.Payload, &p) {
			return
		}
		c.router.SetReady(ctx, c.playerID, p.IsReady)

	case CommandReturnToLobby:
		c.router.ReturnToLobby(ctx, c.playerID)

	default:
		c.logger.Debug("unknown command type", slog.String("type", string(env.Type)))
	}
}

func (c *Client) decode(data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Debug("malformed command payload", slog.String("error", err.Error()))
		return false
	}
	return true
}

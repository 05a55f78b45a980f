package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/session-broker/internal/broker"
	"github.com/fathima-sithara/session-broker/internal/events"
	"github.com/fathima-sithara/session-broker/internal/presence"
)

// Gateway owns the websocket side of a session: identity assignment on
// upgrade, the read loop dispatching client frames into the broker, and the
// write pump draining the broker's frames back out.
type Gateway struct {
	broker   *broker.Broker
	presence *presence.Store
	events   *events.Producer
	log      *zap.SugaredLogger

	pingInterval  time.Duration
	writeDeadline time.Duration
	maxMsgSize    int64
}

func NewGateway(b *broker.Broker, pres *presence.Store, prod *events.Producer, log *zap.SugaredLogger, pingInterval, writeDeadline time.Duration, maxMsgSize int64) *Gateway {
	return &Gateway{
		broker:        b,
		presence:      pres,
		events:        prod,
		log:           log,
		pingInterval:  pingInterval,
		writeDeadline: writeDeadline,
		maxMsgSize:    maxMsgSize,
	}
}

// Handle returns the connection handler to mount behind the fiber websocket
// middleware.
func (g *Gateway) Handle() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		c := g.broker.Connect()
		g.log.Infow("client connected", "conn_id", c.ID)
		_ = g.presence.ConnectionUp(context.Background(), c.ID)

		c.Push(broker.Frame{Event: broker.EventConnected, Payload: c.ID})
		go g.writePump(conn, c)

		readWait := 2 * g.pingInterval
		conn.SetReadLimit(g.maxMsgSize)
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readWait))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			g.dispatch(c, data)
		}

		roomID, _ := g.broker.Disconnect(c.ID)
		_ = g.presence.ConnectionDown(context.Background(), c.ID)
		if roomID != "" {
			_ = g.events.RoomLeft(context.Background(), c.ID, roomID)
		}
		g.log.Infow("client disconnected", "conn_id", c.ID, "room_id", roomID)
	}
}

type inboundFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	RoomID string `json:"roomId"`
}

type signalPayload struct {
	Target string          `json:"target"`
	Signal json.RawMessage `json:"signal"`
}

// dispatch routes one client frame. Malformed frames and unknown events are
// skipped; nothing a client sends can surface an error back to it.
func (g *Gateway) dispatch(c *broker.Client, data []byte) {
	var f inboundFrame
	if err := json.Unmarshal(data, &f); err != nil {
		g.log.Debugw("dropping malformed frame", "conn_id", c.ID, "err", err)
		return
	}
	switch f.Event {
	case broker.EventJoinRoom:
		var p joinPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil || p.RoomID == "" {
			return
		}
		g.broker.Join(c.ID, p.RoomID)
		_ = g.presence.JoinedRoom(context.Background(), c.ID, p.RoomID)
		_ = g.events.RoomJoined(context.Background(), c.ID, p.RoomID)
	case broker.EventSignal:
		var p signalPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil || p.Target == "" {
			return
		}
		g.broker.Signal(c.ID, p.Target, p.Signal)
	default:
		// ignore unknown events
	}
}

func (g *Gateway) writePump(conn *websocket.Conn, c *broker.Client) {
	ticker := time.NewTicker(g.pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case f, ok := <-c.Send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(g.writeDeadline))
			if err := conn.WriteJSON(f); err != nil {
				g.log.Warnw("write frame", "conn_id", c.ID, "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(g.writeDeadline))
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

package broker

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Broker owns all mutable session state: the connection registry and the room
// table. A single mutex serializes every membership mutation; it is released
// before any frame is pushed to a peer, so slow consumers never hold up
// unrelated rooms. Per-target ordering comes from each client's single write
// pump draining its send channel.
type Broker struct {
	mu       sync.Mutex
	registry *Registry
	rooms    *RoomTable

	log     *zap.SugaredLogger
	sendBuf int
}

func New(log *zap.SugaredLogger, sendBuf int) *Broker {
	return &Broker{
		registry: NewRegistry(),
		rooms:    NewRoomTable(),
		log:      log,
		sendBuf:  sendBuf,
	}
}

// Connect allocates a fresh connection identity and registers its handle.
func (b *Broker) Connect() *Client {
	c := newClient(uuid.NewString(), b.sendBuf)
	b.mu.Lock()
	b.registry.Add(c)
	b.mu.Unlock()
	b.log.Debugw("connection registered", "conn_id", c.ID)
	return c
}

// Join moves the connection into roomID and notifies the room's existing
// members. Re-joining the current room is a no-op; joining a different room
// leaves the old one first, with the usual departure notification.
func (b *Broker) Join(connID, roomID string) {
	b.mu.Lock()
	if _, ok := b.registry.Get(connID); !ok {
		b.mu.Unlock()
		return
	}
	var departed []*Client
	if prev, inRoom := b.registry.Room(connID); inRoom {
		if prev == roomID {
			b.mu.Unlock()
			return
		}
		if remaining, removed := b.rooms.Leave(prev, connID); removed {
			departed = b.clientsLocked(remaining)
		}
	}
	peers := b.rooms.Join(roomID, connID)
	b.registry.SetRoom(connID, roomID)
	notify := b.clientsLocked(peers)
	b.mu.Unlock()

	for _, p := range departed {
		p.Push(Frame{Event: EventUserDisconnected, Payload: connID})
	}
	for _, p := range notify {
		p.Push(Frame{Event: EventUserConnected, Payload: connID})
	}
	b.log.Debugw("joined room", "conn_id", connID, "room_id", roomID, "peers", len(notify))
}

// Signal forwards an opaque payload to the addressed target, regardless of
// room membership. An unknown or torn-down target drops the frame silently.
func (b *Broker) Signal(senderID, targetID string, signal json.RawMessage) {
	b.mu.Lock()
	target, ok := b.registry.Get(targetID)
	b.mu.Unlock()
	if !ok {
		b.log.Debugw("signal target not live, dropping", "sender", senderID, "target", targetID)
		return
	}
	target.Push(Frame{Event: EventSignal, Payload: SignalPayload{Sender: senderID, Signal: signal}})
}

// Disconnect tears the connection down: no further frames will be delivered
// to it, its room membership is removed and remaining members are notified.
// Idempotent; the room id the connection was in (if any) is returned so
// callers can record the departure.
func (b *Broker) Disconnect(connID string) (roomID string, ok bool) {
	b.mu.Lock()
	c, live := b.registry.Get(connID)
	if !live {
		b.mu.Unlock()
		return "", false
	}
	roomID, inRoom := b.registry.Remove(connID)
	var notify []*Client
	if inRoom {
		if remaining, removed := b.rooms.Leave(roomID, connID); removed {
			notify = b.clientsLocked(remaining)
		}
	}
	b.mu.Unlock()

	c.Close()
	for _, p := range notify {
		p.Push(Frame{Event: EventUserDisconnected, Payload: connID})
	}
	b.log.Debugw("connection gone", "conn_id", connID, "room_id", roomID)
	return roomID, true
}

// Members returns the room's member ids in join order, nil for unknown rooms.
func (b *Broker) Members(roomID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rooms.Members(roomID)
}

// RoomExists reports whether the room currently has members.
func (b *Broker) RoomExists(roomID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rooms.Exists(roomID)
}

// clientsLocked resolves ids to live handles. Caller holds b.mu.
func (b *Broker) clientsLocked(ids []string) []*Client {
	out := make([]*Client, 0, len(ids))
	for _, id := range ids {
		if c, ok := b.registry.Get(id); ok {
			out = append(out, c)
		}
	}
	return out
}

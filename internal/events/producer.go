package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Producer publishes room membership audit records. It is fire-and-forget
// from the relay's point of view and a nil *Producer is a valid no-op.
type Producer struct {
	writer *kafkago.Writer
}

type roomEvent struct {
	Type   string    `json:"type"`
	ConnID string    `json:"conn_id"`
	RoomID string    `json:"room_id"`
	At     time.Time `json:"at"`
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
	}
	return &Producer{writer: w}
}

func (p *Producer) RoomJoined(ctx context.Context, connID, roomID string) error {
	return p.publish(ctx, roomEvent{Type: "room-joined", ConnID: connID, RoomID: roomID, At: time.Now().UTC()})
}

func (p *Producer) RoomLeft(ctx context.Context, connID, roomID string) error {
	return p.publish(ctx, roomEvent{Type: "room-left", ConnID: connID, RoomID: roomID, At: time.Now().UTC()})
}

func (p *Producer) publish(ctx context.Context, ev roomEvent) error {
	if p == nil {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(ev.RoomID),
		Value: b,
		Time:  ev.At,
	})
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

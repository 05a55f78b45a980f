package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store mirrors connection liveness into Redis so an operator (or a future
// multi-instance router) can see which connections are up and where they are.
// Keys: <prefix>:conn:<connID> -> json {room_id, connected_at}.
// A nil *Store is valid and does nothing; the relay never depends on Redis.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type connState struct {
	RoomID      string `json:"room_id,omitempty"`
	ConnectedAt int64  `json:"connected_at"`
}

func NewStore(client *redis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "broker"
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) connKey(connID string) string {
	return fmt.Sprintf("%s:conn:%s", s.prefix, connID)
}

func (s *Store) ConnectionUp(ctx context.Context, connID string) error {
	if s == nil {
		return nil
	}
	b, _ := json.Marshal(connState{ConnectedAt: time.Now().Unix()})
	return s.client.Set(ctx, s.connKey(connID), b, s.ttl).Err()
}

func (s *Store) JoinedRoom(ctx context.Context, connID, roomID string) error {
	if s == nil {
		return nil
	}
	b, _ := json.Marshal(connState{RoomID: roomID, ConnectedAt: time.Now().Unix()})
	return s.client.Set(ctx, s.connKey(connID), b, s.ttl).Err()
}

func (s *Store) ConnectionDown(ctx context.Context, connID string) error {
	if s == nil {
		return nil
	}
	return s.client.Del(ctx, s.connKey(connID)).Err()
}

package broker

import "sync"

// Client is the broker-side handle for a single live connection. The gateway
// owns the websocket itself; the broker only ever touches the send channel.
type Client struct {
	ID   string
	Send chan Frame

	mu     sync.Mutex
	closed bool
}

func newClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{ID: id, Send: make(chan Frame, buffer)}
}

// Push queues a frame without blocking. Frames to a closed or backed-up
// client are dropped and false is returned.
func (c *Client) Push(f Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- f:
		return true
	default:
		return false
	}
}

// Close stops delivery and releases the write pump. Safe to call twice.
func (c *Client) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
	c.mu.Unlock()
}

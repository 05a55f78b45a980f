package broker

// Registry tracks every live connection and the room it belongs to, if any.
// It is not safe for concurrent use; the Broker serializes all access.
type Registry struct {
	clients map[string]*Client
	rooms   map[string]string // conn id -> room id
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		rooms:   make(map[string]string),
	}
}

func (r *Registry) Add(c *Client) {
	r.clients[c.ID] = c
}

func (r *Registry) Get(id string) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Room returns the room the connection joined, if it joined one.
func (r *Registry) Room(id string) (string, bool) {
	room, ok := r.rooms[id]
	return room, ok
}

func (r *Registry) SetRoom(id, roomID string) {
	r.rooms[id] = roomID
}

// Remove forgets the connection and reports the room it was in. Removing an
// unknown id is a no-op.
func (r *Registry) Remove(id string) (roomID string, inRoom bool) {
	if _, ok := r.clients[id]; !ok {
		return "", false
	}
	delete(r.clients, id)
	roomID, inRoom = r.rooms[id]
	delete(r.rooms, id)
	return roomID, inRoom
}

func (r *Registry) Len() int {
	return len(r.clients)
}

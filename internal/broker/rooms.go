package broker

// RoomTable maps room ids to their members in join order. Rooms are created
// lazily on first join and deleted as soon as the last member leaves, so an
// empty room never exists in the table. It is not safe for concurrent use;
// the Broker serializes all access.
type RoomTable struct {
	rooms map[string][]string
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[string][]string)}
}

// Join adds connID to roomID and returns the other current members, in join
// order, for notification. Joining a room the connection is already in does
// not add a second entry.
func (t *RoomTable) Join(roomID, connID string) []string {
	members := t.rooms[roomID]
	peers := make([]string, 0, len(members))
	present := false
	for _, id := range members {
		if id == connID {
			present = true
			continue
		}
		peers = append(peers, id)
	}
	if !present {
		t.rooms[roomID] = append(members, connID)
	}
	return peers
}

// Leave removes connID from roomID and returns the remaining members. The
// second result is false when nothing was removed: unknown room, or connID
// was not a member. An emptied room is deleted from the table.
func (t *RoomTable) Leave(roomID, connID string) ([]string, bool) {
	members, ok := t.rooms[roomID]
	if !ok {
		return nil, false
	}
	kept := make([]string, 0, len(members))
	removed := false
	for _, id := range members {
		if id == connID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		return nil, false
	}
	if len(kept) == 0 {
		delete(t.rooms, roomID)
		return nil, true
	}
	t.rooms[roomID] = kept
	return kept, true
}

// Members returns a copy of the room's member list in join order, or nil for
// an unknown room.
func (t *RoomTable) Members(roomID string) []string {
	members, ok := t.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]string, len(members))
	copy(out, members)
	return out
}

func (t *RoomTable) Exists(roomID string) bool {
	_, ok := t.rooms[roomID]
	return ok
}

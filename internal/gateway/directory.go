package gateway

// Directory is the in-memory video room directory: room key to the
// ordered set of joined connection IDs. It lives for the process
// lifetime and is deliberately not persisted. Only the hub goroutine
// touches it.
type Directory struct {
	rooms map[string][]string
}

// NewDirectory creates an empty video room directory.
func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string][]string)}
}

// Join appends a connection to a room, creating the entry on first
// join. Returns false if the connection was already a member.
func (d *Directory) Join(roomKey, connID string) bool {
	members := d.rooms[roomKey]
	for _, id := range members {
		if id == connID {
			return false
		}
	}
	d.rooms[roomKey] = append(members, connID)
	return true
}

// Others returns the room members other than connID, in join order.
// This is the "existing participants" snapshot sent to a joiner.
func (d *Directory) Others(roomKey, connID string) []string {
	others := make([]string, 0, len(d.rooms[roomKey]))
	for _, id := range d.rooms[roomKey] {
		if id != connID {
			others = append(others, id)
		}
	}
	return others
}

// Members returns all current members of a room, in join order.
func (d *Directory) Members(roomKey string) []string {
	members := d.rooms[roomKey]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// RemoveAll removes a connection from every room that contains it and
// returns the affected rooms with their remaining members. A connection
// is only ever in one room in practice, but the scan covers all entries
// anyway. Rooms left empty are deleted.
func (d *Directory) RemoveAll(connID string) map[string][]string {
	affected := make(map[string][]string)
	for roomKey, members := range d.rooms {
		idx := -1
		for i, id := range members {
			if id == connID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		members = append(members[:idx], members[idx+1:]...)
		if len(members) == 0 {
			delete(d.rooms, roomKey)
			affected[roomKey] = nil
			continue
		}
		d.rooms[roomKey] = members
		remaining := make([]string, len(members))
		copy(remaining, members)
		affected[roomKey] = remaining
	}
	return affected
}

// Contains reports whether any room still holds the connection.
func (d *Directory) Contains(connID string) bool {
	for _, members := range d.rooms {
		for _, id := range members {
			if id == connID {
				return true
			}
		}
	}
	return false
}

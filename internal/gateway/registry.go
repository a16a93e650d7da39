package gateway

// Roster tracks, per chat room, the set of currently connected clients.
// Membership is derived from live connections only; it is never
// persisted. Only the hub goroutine touches it.
type Roster struct {
	rooms map[string]map[*Client]bool
}

// NewRoster creates an empty chat roster.
func NewRoster() *Roster {
	return &Roster{rooms: make(map[string]map[*Client]bool)}
}

// Join adds a client to a room's broadcast group.
func (r *Roster) Join(roomID string, c *Client) {
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[*Client]bool)
		r.rooms[roomID] = members
	}
	members[c] = true
}

// Members returns the clients currently in a room's broadcast group.
func (r *Roster) Members(roomID string) []*Client {
	members := r.rooms[roomID]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// RemoveAll drops a client from every room it joined, deleting rooms
// that become empty.
func (r *Roster) RemoveAll(c *Client) {
	for roomID, members := range r.rooms {
		if members[c] {
			delete(members, c)
			if len(members) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
}

package hub

// Registry tracks live connections, their room membership, and which member
// of a room is the broadcaster. All methods run on the hub goroutine, so no
// locking is needed; the hub's command queue is the serialization point.
type Registry struct {
	rooms map[string]*room
	conns map[string]*connRecord
}

// room holds its member set and the broadcaster explicitly, rather than
// scanning members for a flag. At most one broadcaster per room; a later
// claim silently replaces the field.
type room struct {
	members       map[string]struct{}
	broadcasterID string
}

type connRecord struct {
	roomID      string
	broadcaster bool
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*room),
		conns: make(map[string]*connRecord),
	}
}

// Add creates the record for a new connection.
func (r *Registry) Add(connID string) {
	r.conns[connID] = &connRecord{}
}

// Join adds the connection to the room, implicitly creating the room and
// leaving any previous room first. It returns the previous room (empty if
// none) so the caller can recount it. Joining the current room is idempotent.
func (r *Registry) Join(connID, roomID string) (prevRoom string) {
	rec, ok := r.conns[connID]
	if !ok {
		return ""
	}
	if rec.roomID == roomID {
		return ""
	}

	if rec.roomID != "" {
		prevRoom = rec.roomID
		r.detach(connID, rec)
	}

	rm := r.rooms[roomID]
	if rm == nil {
		rm = &room{members: make(map[string]struct{})}
		r.rooms[roomID] = rm
	}
	rm.members[connID] = struct{}{}
	if rec.broadcaster {
		rm.broadcasterID = connID
	}
	rec.roomID = roomID
	return prevRoom
}

// Leave removes the connection from the room's member set. The broadcaster
// flag on the connection survives; only disconnect clears it.
func (r *Registry) Leave(connID, roomID string) bool {
	rec, ok := r.conns[connID]
	if !ok || rec.roomID != roomID {
		return false
	}
	r.detach(connID, rec)
	rec.roomID = ""
	return true
}

// MarkBroadcaster flags the connection as its room's video source. No
// uniqueness check: a second claim takes over silently.
func (r *Registry) MarkBroadcaster(connID string) {
	rec, ok := r.conns[connID]
	if !ok {
		return
	}
	rec.broadcaster = true
	if rm := r.rooms[rec.roomID]; rm != nil {
		rm.broadcasterID = connID
	}
}

// Remove discards the connection entirely, returning the room it was in and
// whether it was flagged broadcaster. Called on disconnect.
func (r *Registry) Remove(connID string) (roomID string, wasBroadcaster bool) {
	rec, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	roomID = rec.roomID
	wasBroadcaster = rec.broadcaster
	if roomID != "" {
		r.detach(connID, rec)
	}
	delete(r.conns, connID)
	return roomID, wasBroadcaster
}

func (r *Registry) MembersOf(roomID string) []string {
	rm := r.rooms[roomID]
	if rm == nil {
		return nil
	}
	out := make([]string, 0, len(rm.members))
	for id := range rm.members {
		out = append(out, id)
	}
	return out
}

func (r *Registry) BroadcasterOf(roomID string) (string, bool) {
	rm := r.rooms[roomID]
	if rm == nil || rm.broadcasterID == "" {
		return "", false
	}
	return rm.broadcasterID, true
}

// ViewerCount recomputes from the member set rather than tracking a delta,
// so it cannot drift: members minus the broadcaster if one is present.
func (r *Registry) ViewerCount(roomID string) int {
	rm := r.rooms[roomID]
	if rm == nil {
		return 0
	}
	count := len(rm.members)
	if rm.broadcasterID != "" {
		count--
	}
	if count < 0 {
		count = 0
	}
	return count
}

func (r *Registry) RoomOf(connID string) string {
	if rec, ok := r.conns[connID]; ok {
		return rec.roomID
	}
	return ""
}

func (r *Registry) IsBroadcaster(connID string) bool {
	if rec, ok := r.conns[connID]; ok {
		return rec.broadcaster
	}
	return false
}

// detach removes the connection from its current room, dropping the room's
// broadcaster designation with it and deleting the room once empty.
func (r *Registry) detach(connID string, rec *connRecord) {
	rm := r.rooms[rec.roomID]
	if rm == nil {
		return
	}
	delete(rm.members, connID)
	if rm.broadcasterID == connID {
		rm.broadcasterID = ""
	}
	if len(rm.members) == 0 {
		delete(r.rooms, rec.roomID)
	}
}

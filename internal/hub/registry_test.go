package hub

import (
	"testing"
)

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Add("c1")

	r.Join("c1", "room")
	r.Join("c1", "room")

	if n := len(r.MembersOf("room")); n != 1 {
		t.Errorf("members = %d, want 1", n)
	}
}

func TestRegistry_JoinMovesBetweenRooms(t *testing.T) {
	r := NewRegistry()
	r.Add("c1")

	r.Join("c1", "a")
	prev := r.Join("c1", "b")

	if prev != "a" {
		t.Errorf("prev room = %q, want %q", prev, "a")
	}
	if len(r.MembersOf("a")) != 0 {
		t.Error("connection should have left room a")
	}
	if r.RoomOf("c1") != "b" {
		t.Errorf("room = %q, want b", r.RoomOf("c1"))
	}
}

func TestRegistry_AtMostOneBroadcaster(t *testing.T) {
	r := NewRegistry()
	r.Add("c1")
	r.Add("c2")
	r.Join("c1", "room")
	r.Join("c2", "room")

	r.MarkBroadcaster("c1")
	if id, ok := r.BroadcasterOf("room"); !ok || id != "c1" {
		t.Fatalf("broadcaster = %q (%v), want c1", id, ok)
	}

	// A second claim is accepted silently and takes over.
	r.MarkBroadcaster("c2")
	if id, _ := r.BroadcasterOf("room"); id != "c2" {
		t.Errorf("broadcaster = %q, want c2", id)
	}
}

func TestRegistry_ViewerCount(t *testing.T) {
	r := NewRegistry()
	r.Add("b")
	r.MarkBroadcaster("b")
	r.Join("b", "room")

	const joins = 5
	for i := 0; i < joins; i++ {
		id := string(rune('0' + i))
		r.Add(id)
		r.Join(id, "room")
	}
	if got := r.ViewerCount("room"); got != joins {
		t.Errorf("viewer count = %d, want %d", got, joins)
	}

	// Leaves: N joins, M leaves, one broadcaster -> N-M viewers.
	r.Leave("0", "room")
	r.Leave("1", "room")
	if got := r.ViewerCount("room"); got != joins-2 {
		t.Errorf("viewer count = %d, want %d", got, joins-2)
	}

	if got := r.ViewerCount("empty-room"); got != 0 {
		t.Errorf("empty room count = %d, want 0", got)
	}
}

func TestRegistry_BroadcasterFlagSurvivesRoomSwitch(t *testing.T) {
	r := NewRegistry()
	r.Add("b")
	r.Join("b", "a")
	r.MarkBroadcaster("b")

	r.Join("b", "b-room")

	if !r.IsBroadcaster("b") {
		t.Error("broadcaster flag must persist across room switches")
	}
	if id, ok := r.BroadcasterOf("b-room"); !ok || id != "b" {
		t.Errorf("new room broadcaster = %q (%v), want b", id, ok)
	}
	if _, ok := r.BroadcasterOf("a"); ok {
		t.Error("old room should have no broadcaster")
	}
}

func TestRegistry_LeaveKeepsFlagRemoveClearsRecord(t *testing.T) {
	r := NewRegistry()
	r.Add("b")
	r.Join("b", "room")
	r.MarkBroadcaster("b")

	r.Leave("b", "room")
	if !r.IsBroadcaster("b") {
		t.Error("leave must not clear the broadcaster flag")
	}

	roomID, wasBroadcaster := r.Remove("b")
	if roomID != "" {
		t.Errorf("room at disconnect = %q, want empty after leave", roomID)
	}
	if !wasBroadcaster {
		t.Error("Remove should report the broadcaster flag")
	}
	if r.IsBroadcaster("b") {
		t.Error("record should be gone after Remove")
	}
}

func TestRegistry_RemoveWhileInRoom(t *testing.T) {
	r := NewRegistry()
	r.Add("b")
	r.Add("v")
	r.Join("b", "room")
	r.Join("v", "room")
	r.MarkBroadcaster("b")

	roomID, wasBroadcaster := r.Remove("b")
	if roomID != "room" || !wasBroadcaster {
		t.Fatalf("Remove = (%q, %v), want (room, true)", roomID, wasBroadcaster)
	}
	if _, ok := r.BroadcasterOf("room"); ok {
		t.Error("room should have no broadcaster after its broadcaster disconnected")
	}
	if got := r.ViewerCount("room"); got != 1 {
		t.Errorf("viewer count = %d, want 1", got)
	}
}

func TestRegistry_EmptyRoomIsDiscarded(t *testing.T) {
	r := NewRegistry()
	r.Add("c1")
	r.Join("c1", "room")
	r.Leave("c1", "room")

	if _, ok := r.rooms["room"]; ok {
		t.Error("empty room should be discarded")
	}
}

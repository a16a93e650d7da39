package gateway

import (
	"reflect"
	"testing"
)

func TestDirectory_JoinIsIdempotent(t *testing.T) {
	d := NewDirectory()

	if !d.Join("room-1", "conn-a") {
		t.Error("first Join() = false, want true")
	}
	if d.Join("room-1", "conn-a") {
		t.Error("duplicate Join() = true, want false")
	}
	if got := d.Members("room-1"); !reflect.DeepEqual(got, []string{"conn-a"}) {
		t.Errorf("Members() = %v, want [conn-a]", got)
	}
}

func TestDirectory_OthersSnapshot(t *testing.T) {
	d := NewDirectory()
	d.Join("room-1", "conn-a")
	d.Join("room-1", "conn-b")
	d.Join("room-1", "conn-c")

	if got := d.Others("room-1", "conn-b"); !reflect.DeepEqual(got, []string{"conn-a", "conn-c"}) {
		t.Errorf("Others() = %v, want [conn-a conn-c]", got)
	}
	if got := d.Others("empty-room", "conn-a"); len(got) != 0 {
		t.Errorf("Others() on empty room = %v, want empty", got)
	}
}

func TestDirectory_RemoveAll(t *testing.T) {
	d := NewDirectory()
	d.Join("room-1", "conn-a")
	d.Join("room-1", "conn-b")
	d.Join("room-2", "conn-a")

	affected := d.RemoveAll("conn-a")

	if got := affected["room-1"]; !reflect.DeepEqual(got, []string{"conn-b"}) {
		t.Errorf("room-1 remaining = %v, want [conn-b]", got)
	}
	if got, ok := affected["room-2"]; !ok || got != nil {
		t.Errorf("room-2 remaining = %v (present=%v), want empty entry", got, ok)
	}

	// Emptied rooms are deleted, and no entry anywhere still holds conn-a.
	if d.Contains("conn-a") {
		t.Error("Contains(conn-a) = true after RemoveAll")
	}
	if got := d.Members("room-2"); len(got) != 0 {
		t.Errorf("room-2 Members() = %v, want empty", got)
	}
}

func TestDirectory_RemoveAllUnknownIsNoop(t *testing.T) {
	d := NewDirectory()
	d.Join("room-1", "conn-a")

	if affected := d.RemoveAll("conn-ghost"); len(affected) != 0 {
		t.Errorf("RemoveAll() affected = %v, want none", affected)
	}
	if !d.Contains("conn-a") {
		t.Error("Contains(conn-a) = false, want true")
	}
}

package ids

import "testing"

func TestFromNameIsDeterministic(t *testing.T) {
	if FromName("A") != FromName("A") {
		t.Fatalf("Id::from(name) == Id::from(name) must hold")
	}
}

func TestSystemIdRoundTrip(t *testing.T) {
	if SystemIdFromName("sys-a") != SystemIdFromName("sys-a") {
		t.Fatalf("SystemId round-trip must be stable")
	}
	if SystemIdFromName("sys-a") == SystemIdFromName("sys-b") {
		t.Fatalf("distinct names should (in practice) hash distinctly")
	}
}

func TestEventIdRoundTrip(t *testing.T) {
	if EventIdFromName("tick") != EventIdFromName("tick") {
		t.Fatalf("EventId round-trip must be stable")
	}
}

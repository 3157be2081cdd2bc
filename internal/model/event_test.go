package model

import "testing"

func TestParseSportType(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      SportType
		wantKnown bool
	}{
		{"basketball", "Basketball", SportBasketball, true},
		{"soccer", "Soccer", SportSoccer, true},
		{"tennis", "Tennis", SportTennis, true},
		{"volleyball", "Volleyball", SportVolleyball, true},
		{"hiking", "Hiking", SportHiking, true},
		{"unknown value", "Unknown", SportBasketball, false},
		{"empty", "", SportBasketball, false},
		{"wrong case", "basketball", SportBasketball, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ParseSportType(tt.input)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if known != tt.wantKnown {
				t.Errorf("expected known=%v, got %v", tt.wantKnown, known)
			}
		})
	}
}

func TestEvent_HasParticipant(t *testing.T) {
	ev := Event{ParticipantIDs: []string{"u1", "u2"}}

	if !ev.HasParticipant("u1") {
		t.Error("expected u1 to be a participant")
	}
	if ev.HasParticipant("u3") {
		t.Error("expected u3 not to be a participant")
	}
}

func TestEvent_IsFull(t *testing.T) {
	ev := Event{Capacity: 2, ParticipantIDs: []string{"u1"}}
	if ev.IsFull() {
		t.Error("one of two slots used, should not be full")
	}

	ev.ParticipantIDs = append(ev.ParticipantIDs, "u2")
	if !ev.IsFull() {
		t.Error("both slots used, should be full")
	}

	// A cached event can transiently exceed capacity; still full.
	ev.ParticipantIDs = append(ev.ParticipantIDs, "u3")
	if !ev.IsFull() {
		t.Error("over capacity should count as full")
	}
}

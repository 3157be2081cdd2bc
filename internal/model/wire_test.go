package model

import (
	"testing"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestDecodeEvent_Complete(t *testing.T) {
	start := time.Date(2026, 9, 4, 18, 30, 0, 0, time.UTC)
	fields := map[string]any{
		FieldTitle:       "Friday Bball Run",
		FieldDescription: "Casual 3v3",
		FieldSportType:   "Basketball",
		FieldLocation: map[string]any{
			FieldLatitude:  37.7749,
			FieldLongitude: -122.4194,
			FieldAddress:   "123 Court St",
			FieldVenueName: "Golden Gate Park",
		},
		FieldDate:         start,
		FieldCapacity:     6,
		FieldParticipants: []string{"u1", "u2"},
		FieldCreatorID:    "u1",
	}

	ev, anomalies := DecodeEvent("e1", fields)
	if len(anomalies) != 0 {
		t.Fatalf("expected no anomalies, got %v", anomalies)
	}
	if ev.ID != "e1" {
		t.Errorf("expected id e1, got %s", ev.ID)
	}
	if ev.Title != "Friday Bball Run" {
		t.Errorf("unexpected title %q", ev.Title)
	}
	if ev.Sport != SportBasketball {
		t.Errorf("unexpected sport %s", ev.Sport)
	}
	if !ev.StartTime.Equal(start) {
		t.Errorf("unexpected start time %v", ev.StartTime)
	}
	if ev.Capacity != 6 {
		t.Errorf("unexpected capacity %d", ev.Capacity)
	}
	if len(ev.ParticipantIDs) != 2 {
		t.Errorf("unexpected participants %v", ev.ParticipantIDs)
	}
	if ev.Location.VenueName == nil || *ev.Location.VenueName != "Golden Gate Park" {
		t.Errorf("unexpected venue %v", ev.Location.VenueName)
	}
}

func TestDecodeEvent_UnknownSportDefaults(t *testing.T) {
	fields := map[string]any{
		FieldTitle:        "Mystery Meetup",
		FieldSportType:    "Unknown",
		FieldDate:         time.Now(),
		FieldCapacity:     4,
		FieldParticipants: []string{},
	}

	ev, anomalies := DecodeEvent("e1", fields)
	if ev.Sport != SportBasketball {
		t.Errorf("expected fallback to basketball, got %s", ev.Sport)
	}
	if len(anomalies) != 1 {
		t.Fatalf("expected one anomaly, got %d", len(anomalies))
	}
	if anomalies[0].Field != FieldSportType {
		t.Errorf("anomaly on wrong field %s", anomalies[0].Field)
	}
}

func TestDecodeEvent_MissingFieldsSubstituted(t *testing.T) {
	ev, anomalies := DecodeEvent("e1", map[string]any{})

	if ev.Capacity != 0 {
		t.Errorf("expected capacity 0, got %d", ev.Capacity)
	}
	if ev.StartTime.IsZero() {
		t.Error("expected start time default, got zero time")
	}
	if ev.Sport != SportBasketball {
		t.Errorf("expected default sport, got %s", ev.Sport)
	}
	if ev.Location.VenueName != nil {
		t.Error("expected no venue name")
	}
	// sportType, capacity, and date each report a substitution
	if len(anomalies) != 3 {
		t.Errorf("expected 3 anomalies, got %d: %v", len(anomalies), anomalies)
	}
}

func TestDecodeEvent_NumericVariants(t *testing.T) {
	for name, v := range map[string]any{
		"int":     6,
		"int64":   int64(6),
		"uint64":  uint64(6),
		"float64": float64(6),
	} {
		t.Run(name, func(t *testing.T) {
			ev, _ := DecodeEvent("e1", map[string]any{FieldCapacity: v})
			if ev.Capacity != 6 {
				t.Errorf("expected capacity 6, got %d", ev.Capacity)
			}
		})
	}
}

func TestDecodeEvent_SurrealDateTime(t *testing.T) {
	// The CBOR decode path yields models.CustomDateTime for datetime
	// fields, not time.Time.
	want := time.Date(2026, 9, 4, 18, 30, 0, 0, time.UTC)
	for name, v := range map[string]any{
		"value":   models.CustomDateTime{Time: want},
		"pointer": &models.CustomDateTime{Time: want},
	} {
		t.Run(name, func(t *testing.T) {
			ev, anomalies := DecodeEvent("e1", map[string]any{
				FieldDate:         v,
				FieldSportType:    "Basketball",
				FieldCapacity:     6,
				FieldParticipants: []string{},
			})
			if !ev.StartTime.Equal(want) {
				t.Errorf("expected %v, got %v", want, ev.StartTime)
			}
			if len(anomalies) != 0 {
				t.Errorf("expected no anomalies, got %v", anomalies)
			}
		})
	}
}

func TestDecodeEvent_RFC3339Date(t *testing.T) {
	ev, anomalies := DecodeEvent("e1", map[string]any{
		FieldDate: "2026-09-04T18:30:00Z",
	})
	want := time.Date(2026, 9, 4, 18, 30, 0, 0, time.UTC)
	if !ev.StartTime.Equal(want) {
		t.Errorf("expected %v, got %v", want, ev.StartTime)
	}
	for _, a := range anomalies {
		if a.Field == FieldDate {
			t.Error("valid RFC3339 date should not be an anomaly")
		}
	}
}

func TestDecodeIdentity(t *testing.T) {
	ident := DecodeIdentity("u1", map[string]any{
		FieldUsername:        "alice",
		FieldEmail:           "alice@example.com",
		FieldProfileImageURL: "https://img.example.com/a.png",
	})
	if ident.Username != "alice" {
		t.Errorf("unexpected username %q", ident.Username)
	}
	if ident.ProfileImageURL == nil || *ident.ProfileImageURL != "https://img.example.com/a.png" {
		t.Error("expected profile image URL")
	}
}

func TestDecodeIdentity_PlaceholderUsername(t *testing.T) {
	ident := DecodeIdentity("u1", map[string]any{
		FieldEmail: "alice@example.com",
	})
	if ident.Username != PlaceholderUsername {
		t.Errorf("expected placeholder username, got %q", ident.Username)
	}
	if ident.ProfileImageURL != nil {
		t.Error("expected nil profile image URL")
	}
}

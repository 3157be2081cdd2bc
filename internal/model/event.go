package model

import (
	"slices"
	"time"
)

// SportType identifies the sport an event is organized around. The values
// are the wire strings stored in the sportType field.
type SportType string

const (
	SportBasketball SportType = "Basketball"
	SportSoccer     SportType = "Soccer"
	SportTennis     SportType = "Tennis"
	SportVolleyball SportType = "Volleyball"
	SportHiking     SportType = "Hiking"
)

// DefaultSportType is substituted when a remote document carries a sport
// this build does not know about. Unknown values fail closed rather than
// crashing the directory.
const DefaultSportType = SportBasketball

// SportTypes lists every known sport in display order.
var SportTypes = []SportType{
	SportBasketball,
	SportSoccer,
	SportTennis,
	SportVolleyball,
	SportHiking,
}

// ParseSportType maps a wire string onto a known sport. The second return
// reports whether the value was recognized.
func ParseSportType(s string) (SportType, bool) {
	for _, st := range SportTypes {
		if string(st) == s {
			return st, true
		}
	}
	return DefaultSportType, false
}

// DisplayName returns the human-readable name of the sport.
func (s SportType) DisplayName() string {
	return string(s)
}

// Location is an immutable value describing where an event takes place.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	VenueName *string `json:"venue_name,omitempty"`
}

// Event represents a scheduled pickup gathering as stored in the events
// collection. ParticipantIDs is a set: unique IDs, order irrelevant.
//
// The authoritative store guarantees len(ParticipantIDs) <= Capacity at
// all times; a locally cached Event may transiently violate that while a
// snapshot is in flight, which is why joins are re-checked server-side.
type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Sport          SportType `json:"sport_type"`
	Location       Location  `json:"location"`
	StartTime      time.Time `json:"start_time"`
	Capacity       int       `json:"max_participants"`
	ParticipantIDs []string  `json:"current_participants"`
	CreatorID      string    `json:"creator_id"`
}

// HasParticipant reports whether userID is part of the event. Membership
// is always derived from ParticipantIDs, never cached.
func (e *Event) HasParticipant(userID string) bool {
	return slices.Contains(e.ParticipantIDs, userID)
}

// IsFull reports whether the event has reached capacity.
func (e *Event) IsFull() bool {
	return len(e.ParticipantIDs) >= e.Capacity
}

// Constraints
const (
	MaxEventTitleLength       = 100
	MaxEventDescriptionLength = 2000
)

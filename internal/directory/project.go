package directory

import (
	"strings"
	"time"

	"github.com/forgo/pickup/internal/model"
)

// Filter selects which events a projection includes.
type Filter string

const (
	// FilterAll includes every cached event.
	FilterAll Filter = "all"

	// FilterJoined includes events the user participates in.
	FilterJoined Filter = "joined"

	// FilterCreated includes events the user created.
	FilterCreated Filter = "created"

	// FilterUpcoming includes events starting after now.
	FilterUpcoming Filter = "upcoming"
)

// Project derives a filtered, searched view of the cache. The result is
// ordered like Snapshot and is always a fresh slice; the cache is never
// mutated. A non-empty searchText is applied after the filter as a
// case-insensitive substring match over title, sport name, and venue
// name (events without a venue simply don't match on venue).
func (d *Directory) Project(f Filter, searchText, userID string) []model.Event {
	now := time.Now()

	var out []model.Event
	for _, ev := range d.Snapshot() {
		if !matchesFilter(&ev, f, userID, now) {
			continue
		}
		if searchText != "" && !matchesSearch(&ev, searchText) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func matchesFilter(ev *model.Event, f Filter, userID string, now time.Time) bool {
	switch f {
	case FilterJoined:
		return ev.HasParticipant(userID)
	case FilterCreated:
		return ev.CreatorID == userID
	case FilterUpcoming:
		return ev.StartTime.After(now)
	default:
		return true
	}
}

func matchesSearch(ev *model.Event, searchText string) bool {
	needle := strings.ToLower(searchText)
	if strings.Contains(strings.ToLower(ev.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(ev.Sport.DisplayName()), needle) {
		return true
	}
	if ev.Location.VenueName != nil &&
		strings.Contains(strings.ToLower(*ev.Location.VenueName), needle) {
		return true
	}
	return false
}

package model

import (
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Wire field names for the users and events collections.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldProfileImageURL = "profileImageURL"

	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldSportType    = "sportType"
	FieldLocation     = "location"
	FieldDate         = "date"
	FieldCapacity     = "maxParticipants"
	FieldParticipants = "currentParticipants"
	FieldCreatorID    = "creatorId"

	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldAddress   = "address"
	FieldVenueName = "venueName"
)

// DecodeEvent builds an Event from a raw remote document. Malformed or
// missing fields never fail the decode: each is replaced with a defined
// default and, for the fields that matter to correctness, recorded as an
// anomaly. The caller reports anomalies and keeps the document.
func DecodeEvent(docID string, fields map[string]any) (Event, []Anomaly) {
	var anomalies []Anomaly
	report := func(field, detail string) {
		anomalies = append(anomalies, Anomaly{
			Collection: "events",
			DocID:      docID,
			Field:      field,
			Detail:     detail,
		})
	}

	sportRaw, _ := fieldString(fields, FieldSportType)
	sport, known := ParseSportType(sportRaw)
	if !known {
		report(FieldSportType, fmt.Sprintf("unknown value %q, using %s", sportRaw, DefaultSportType))
	}

	capacity, ok := fieldInt(fields, FieldCapacity)
	if !ok {
		report(FieldCapacity, "missing or non-numeric, using 0")
		capacity = 0
	}

	start, ok := fieldTime(fields, FieldDate)
	if !ok {
		report(FieldDate, "missing or invalid timestamp, using current time")
		start = time.Now()
	}

	title, _ := fieldString(fields, FieldTitle)
	description, _ := fieldString(fields, FieldDescription)
	creatorID, _ := fieldString(fields, FieldCreatorID)

	return Event{
		ID:             docID,
		Title:          title,
		Description:    description,
		Sport:          sport,
		Location:       decodeLocation(fields[FieldLocation]),
		StartTime:      start,
		Capacity:       capacity,
		ParticipantIDs: fieldStringSlice(fields, FieldParticipants),
		CreatorID:      creatorID,
	}, anomalies
}

// DecodeIdentity builds an Identity from a raw users document. The
// username falls back to the placeholder so a half-written profile still
// renders.
func DecodeIdentity(docID string, fields map[string]any) Identity {
	username, ok := fieldString(fields, FieldUsername)
	if !ok || username == "" {
		username = PlaceholderUsername
	}
	email, _ := fieldString(fields, FieldEmail)

	ident := Identity{ID: docID, Username: username, Email: email}
	if url, ok := fieldString(fields, FieldProfileImageURL); ok && url != "" {
		ident.ProfileImageURL = &url
	}
	return ident
}

func decodeLocation(v any) Location {
	fields, ok := v.(map[string]any)
	if !ok {
		return Location{}
	}

	lat, _ := fieldFloat(fields, FieldLatitude)
	lng, _ := fieldFloat(fields, FieldLongitude)
	address, _ := fieldString(fields, FieldAddress)

	loc := Location{Latitude: lat, Longitude: lng, Address: address}
	if venue, ok := fieldString(fields, FieldVenueName); ok && venue != "" {
		loc.VenueName = &venue
	}
	return loc
}

// Field extraction helpers. Remote values arrive through CBOR or JSON
// decoding and numeric and time types vary by path.

func fieldString(fields map[string]any, key string) (string, bool) {
	s, ok := fields[key].(string)
	return s, ok
}

func fieldInt(fields map[string]any, key string) (int, bool) {
	switch n := fields[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func fieldFloat(fields map[string]any, key string) (float64, bool) {
	switch n := fields[key].(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func fieldTime(fields map[string]any, key string) (time.Time, bool) {
	switch t := fields[key].(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	case models.CustomDateTime:
		return t.Time, true
	case *models.CustomDateTime:
		if t != nil {
			return t.Time, true
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func fieldStringSlice(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

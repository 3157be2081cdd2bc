package events

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/pickup/internal/model"
	"github.com/forgo/pickup/internal/remote"
)

// Validation errors for event creation.
var (
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title exceeds maximum length")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")
	ErrInvalidCapacity    = errors.New("capacity must be positive")
	ErrStartTimeRequired  = errors.New("start time is required")
	ErrCreatorRequired    = errors.New("creator is required")
)

// Draft is a request to create an event.
type Draft struct {
	Title       string
	Description string
	Sport       model.SportType
	Location    model.Location
	StartTime   time.Time
	Capacity    int
	CreatorID   string
}

// Writer creates and removes event documents.
type Writer struct {
	remote remote.Store
	log    *slog.Logger
}

// Config holds dependencies for the writer.
type Config struct {
	Remote remote.Store
	Logger *slog.Logger
}

// NewWriter creates an event writer.
func NewWriter(cfg Config) *Writer {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Writer{remote: cfg.Remote, log: log}
}

// Create validates the draft and writes the event document. The creator
// starts as the sole participant; membership after that is re-derived
// from the participant list, never assumed from creatorId.
func (w *Writer) Create(ctx context.Context, d Draft) (model.Event, error) {
	d.Title = strings.TrimSpace(d.Title)
	if err := validateDraft(d); err != nil {
		return model.Event{}, err
	}

	sport := d.Sport
	if _, known := model.ParseSportType(string(sport)); !known {
		sport = model.DefaultSportType
	}

	ev := model.Event{
		ID:             uuid.NewString(),
		Title:          d.Title,
		Description:    d.Description,
		Sport:          sport,
		Location:       d.Location,
		StartTime:      d.StartTime,
		Capacity:       d.Capacity,
		ParticipantIDs: []string{d.CreatorID},
		CreatorID:      d.CreatorID,
	}

	location := map[string]any{
		model.FieldLatitude:  ev.Location.Latitude,
		model.FieldLongitude: ev.Location.Longitude,
		model.FieldAddress:   ev.Location.Address,
	}
	if ev.Location.VenueName != nil {
		location[model.FieldVenueName] = *ev.Location.VenueName
	}

	fields := map[string]any{
		model.FieldTitle:        ev.Title,
		model.FieldDescription:  ev.Description,
		model.FieldSportType:    string(ev.Sport),
		model.FieldLocation:     location,
		model.FieldDate:         ev.StartTime,
		model.FieldCapacity:     ev.Capacity,
		model.FieldParticipants: ev.ParticipantIDs,
		model.FieldCreatorID:    ev.CreatorID,
	}
	if err := w.remote.Set(ctx, remote.EventsCollection, ev.ID, fields); err != nil {
		return model.Event{}, err
	}

	w.log.Info("event created",
		slog.String("event_id", ev.ID),
		slog.String("creator_id", ev.CreatorID),
		slog.String("sport", ev.Sport.DisplayName()),
	)
	return ev, nil
}

// Delete removes an event document. The directory reflects the removal
// through its subscription.
func (w *Writer) Delete(ctx context.Context, eventID string) error {
	return w.remote.Delete(ctx, remote.EventsCollection, eventID)
}

func validateDraft(d Draft) error {
	if d.Title == "" {
		return ErrTitleRequired
	}
	if len(d.Title) > model.MaxEventTitleLength {
		return ErrTitleTooLong
	}
	if len(d.Description) > model.MaxEventDescriptionLength {
		return ErrDescriptionTooLong
	}
	if d.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if d.StartTime.IsZero() {
		return ErrStartTimeRequired
	}
	if d.CreatorID == "" {
		return ErrCreatorRequired
	}
	return nil
}

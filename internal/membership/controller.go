package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgo/pickup/internal/model"
	"github.com/forgo/pickup/internal/remote"
)

// Membership errors. Use errors.Is() to classify failures.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventFull     = errors.New("event is full")
	ErrNetwork       = errors.New("remote store unreachable")
	ErrUnknown       = errors.New("membership operation failed")
)

// EventSource is the directory read surface the controller needs.
type EventSource interface {
	Event(id string) (model.Event, bool)
}

// Controller performs join and leave mutations. It holds no state of its
// own; results are the authoritative confirmation for the caller's
// optimistic UI.
type Controller struct {
	events EventSource
	remote remote.Store
	log    *slog.Logger
}

// Config holds dependencies for the controller.
type Config struct {
	Events EventSource
	Remote remote.Store
	Logger *slog.Logger
}

// NewController creates a membership controller.
func NewController(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{events: cfg.Events, remote: cfg.Remote, log: log}
}

// Join adds userID to the event's participants. Already a participant is
// a successful no-op. A full event fails with ErrEventFull: first by the
// local check, then, because the cache may be stale, by the write-time
// condition on the remote mutation.
func (c *Controller) Join(ctx context.Context, eventID, userID string) error {
	ev, ok := c.events.Event(eventID)
	if !ok {
		return ErrEventNotFound
	}
	if ev.HasParticipant(userID) {
		return nil
	}
	if ev.IsFull() {
		return ErrEventFull
	}

	// The condition reads the capacity stored on the document itself, so
	// a capacity changed remotely after our snapshot still holds at write
	// time.
	err := c.remote.Update(ctx, remote.EventsCollection, eventID,
		[]remote.FieldOp{remote.ArrayUnion(model.FieldParticipants, userID)},
		remote.ArrayLenBelowField(model.FieldParticipants, model.FieldCapacity),
	)
	if err != nil {
		return c.classify(err, "join", eventID, userID)
	}

	c.log.Info("joined event",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
	return nil
}

// Leave removes userID from the event's participants. Idempotent: the
// remote removal is a no-op when the user is already absent. The removal
// is always issued even if the local cache says the user is not a
// participant, since the cache may lag a just-completed join.
func (c *Controller) Leave(ctx context.Context, eventID, userID string) error {
	if _, ok := c.events.Event(eventID); !ok {
		return ErrEventNotFound
	}

	err := c.remote.Update(ctx, remote.EventsCollection, eventID,
		[]remote.FieldOp{remote.ArrayRemove(model.FieldParticipants, userID)},
		nil,
	)
	if err != nil {
		return c.classify(err, "leave", eventID, userID)
	}

	c.log.Info("left event",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
	return nil
}

func (c *Controller) classify(err error, op, eventID, userID string) error {
	switch {
	case errors.Is(err, remote.ErrConditionFailed):
		return ErrEventFull
	case errors.Is(err, remote.ErrNotFound):
		return ErrEventNotFound
	case errors.Is(err, remote.ErrConnection):
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	default:
		c.log.Error("membership mutation failed",
			slog.String("op", op),
			slog.String("event_id", eventID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", ErrUnknown, err)
	}
}

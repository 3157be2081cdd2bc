package membership

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/forgo/pickup/internal/model"
	"github.com/forgo/pickup/internal/remote"
	"github.com/forgo/pickup/internal/testing/memstore"
)

// cacheSource is a stand-in for the directory: a fixed view that may
// deliberately lag the store.
type cacheSource struct {
	mu     sync.Mutex
	events map[string]model.Event
}

func newCacheSource(events ...model.Event) *cacheSource {
	src := &cacheSource{events: make(map[string]model.Event)}
	for _, ev := range events {
		src.events[ev.ID] = ev
	}
	return src
}

func (c *cacheSource) Event(id string) (model.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.events[id]
	return ev, ok
}

func seedStoreEvent(store *memstore.Store, ev model.Event) {
	store.Seed(remote.EventsCollection, ev.ID, map[string]any{
		model.FieldTitle:        ev.Title,
		model.FieldSportType:    string(ev.Sport),
		model.FieldDate:         ev.StartTime,
		model.FieldCapacity:     ev.Capacity,
		model.FieldParticipants: append([]string(nil), ev.ParticipantIDs...),
		model.FieldCreatorID:    ev.CreatorID,
	})
}

func newController(events EventSource, store *memstore.Store) *Controller {
	return NewController(Config{
		Events: events,
		Remote: store,
		Logger: slog.New(slog.DiscardHandler),
	})
}

func fixtureEvent(id string, capacity int, participants ...string) model.Event {
	return model.Event{
		ID:             id,
		Title:          "Pickup Game",
		Sport:          model.SportBasketball,
		StartTime:      time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC),
		Capacity:       capacity,
		ParticipantIDs: participants,
		CreatorID:      "u1",
	}
}

func TestJoin_CapacityTwo(t *testing.T) {
	ev := fixtureEvent("e1", 2, "u1")
	store := memstore.New()
	seedStoreEvent(store, ev)
	src := newCacheSource(ev)
	c := newController(src, store)

	require.NoError(t, c.Join(context.Background(), "e1", "u2"))

	fields, ok := store.Doc(remote.EventsCollection, "e1")
	require.True(t, ok)
	require.ElementsMatch(t, []string{"u1", "u2"}, fields[model.FieldParticipants])

	// Cache catches up before the next attempt.
	src.mu.Lock()
	ev.ParticipantIDs = []string{"u1", "u2"}
	src.events["e1"] = ev
	src.mu.Unlock()

	err := c.Join(context.Background(), "e1", "u3")
	require.ErrorIs(t, err, ErrEventFull)
}

func TestJoin_AlreadyParticipantIsNoOp(t *testing.T) {
	ev := fixtureEvent("e1", 4, "u1")
	store := memstore.New()
	seedStoreEvent(store, ev)
	c := newController(newCacheSource(ev), store)

	require.NoError(t, c.Join(context.Background(), "e1", "u1"))
	require.Zero(t, store.UpdateCalls, "no remote traffic for a no-op join")
}

func TestJoin_FullEventShortCircuitsLocally(t *testing.T) {
	ev := fixtureEvent("e1", 2, "u1", "u2")
	store := memstore.New()
	seedStoreEvent(store, ev)
	c := newController(newCacheSource(ev), store)

	err := c.Join(context.Background(), "e1", "u3")
	require.ErrorIs(t, err, ErrEventFull)
	require.Zero(t, store.UpdateCalls, "local check must avoid the remote call")
}

func TestJoin_StaleCacheLosesToRemoteCondition(t *testing.T) {
	// Cache shows one free slot, but the store already filled it.
	stale := fixtureEvent("e1", 2, "u1")
	current := fixtureEvent("e1", 2, "u1", "u4")
	store := memstore.New()
	seedStoreEvent(store, current)
	c := newController(newCacheSource(stale), store)

	err := c.Join(context.Background(), "e1", "u2")
	require.ErrorIs(t, err, ErrEventFull)
	require.Equal(t, 1, store.UpdateCalls, "the stale cache passes the local check")

	fields, _ := store.Doc(remote.EventsCollection, "e1")
	require.ElementsMatch(t, []string{"u1", "u4"}, fields[model.FieldParticipants])
}

func TestJoin_CapacityShrunkRemotely(t *testing.T) {
	// The cache still shows the old capacity with room to spare, but the
	// document's capacity was lowered and is already met. The write-time
	// condition reads capacity from the document, so the join must fail.
	stale := fixtureEvent("e1", 4, "u1")
	current := fixtureEvent("e1", 2, "u1", "u4")
	store := memstore.New()
	seedStoreEvent(store, current)
	c := newController(newCacheSource(stale), store)

	err := c.Join(context.Background(), "e1", "u2")
	require.ErrorIs(t, err, ErrEventFull)

	fields, _ := store.Doc(remote.EventsCollection, "e1")
	require.ElementsMatch(t, []string{"u1", "u4"}, fields[model.FieldParticipants])
}

func TestJoin_EventNotFound(t *testing.T) {
	c := newController(newCacheSource(), memstore.New())
	err := c.Join(context.Background(), "nope", "u1")
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestJoin_RemoteGone(t *testing.T) {
	// Cached locally but already deleted remotely.
	ev := fixtureEvent("e1", 4, "u1")
	c := newController(newCacheSource(ev), memstore.New())

	err := c.Join(context.Background(), "e1", "u2")
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestJoin_ConnectionError(t *testing.T) {
	ev := fixtureEvent("e1", 4, "u1")
	store := memstore.New()
	seedStoreEvent(store, ev)
	store.UpdateErr = fmt.Errorf("%w: dial tcp: refused", remote.ErrConnection)
	c := newController(newCacheSource(ev), store)

	err := c.Join(context.Background(), "e1", "u2")
	require.ErrorIs(t, err, ErrNetwork)
}

func TestJoin_UnknownError(t *testing.T) {
	ev := fixtureEvent("e1", 4, "u1")
	store := memstore.New()
	seedStoreEvent(store, ev)
	store.UpdateErr = fmt.Errorf("something odd")
	c := newController(newCacheSource(ev), store)

	err := c.Join(context.Background(), "e1", "u2")
	require.ErrorIs(t, err, ErrUnknown)
}

func TestJoin_ConcurrentJoinersNeverExceedCapacity(t *testing.T) {
	const capacity = 3
	ev := fixtureEvent("e1", capacity)
	store := memstore.New()
	seedStoreEvent(store, ev)
	c := newController(newCacheSource(ev), store)

	// Every goroutine sees the same stale free-slot view; only the
	// store-side condition arbitrates.
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Join(context.Background(), "e1", fmt.Sprintf("user-%02d", i))
		}(i)
	}
	wg.Wait()

	var joined, full int
	for _, err := range errs {
		switch {
		case err == nil:
			joined++
		default:
			require.ErrorIs(t, err, ErrEventFull)
			full++
		}
	}
	require.Equal(t, capacity, joined)
	require.Equal(t, len(errs)-capacity, full)

	fields, _ := store.Doc(remote.EventsCollection, "e1")
	require.Len(t, fields[model.FieldParticipants], capacity)
}

func TestLeave_RemovesParticipant(t *testing.T) {
	ev := fixtureEvent("e1", 4, "u1", "u2")
	store := memstore.New()
	seedStoreEvent(store, ev)
	c := newController(newCacheSource(ev), store)

	require.NoError(t, c.Leave(context.Background(), "e1", "u2"))

	fields, _ := store.Doc(remote.EventsCollection, "e1")
	require.ElementsMatch(t, []string{"u1"}, fields[model.FieldParticipants])
}

func TestLeave_IssuesRemovalEvenWhenCacheSaysAbsent(t *testing.T) {
	// The cache lags a just-completed join: locally u2 is absent but the
	// store has them. Leave must still clear the store.
	stale := fixtureEvent("e1", 4, "u1")
	current := fixtureEvent("e1", 4, "u1", "u2")
	store := memstore.New()
	seedStoreEvent(store, current)
	c := newController(newCacheSource(stale), store)

	require.NoError(t, c.Leave(context.Background(), "e1", "u2"))
	require.Equal(t, 1, store.UpdateCalls)

	fields, _ := store.Doc(remote.EventsCollection, "e1")
	require.ElementsMatch(t, []string{"u1"}, fields[model.FieldParticipants])
}

func TestLeave_AbsentUserIsNoOp(t *testing.T) {
	ev := fixtureEvent("e1", 4, "u1")
	store := memstore.New()
	seedStoreEvent(store, ev)
	c := newController(newCacheSource(ev), store)

	require.NoError(t, c.Leave(context.Background(), "e1", "u9"))

	fields, _ := store.Doc(remote.EventsCollection, "e1")
	require.ElementsMatch(t, []string{"u1"}, fields[model.FieldParticipants])
}

func TestLeave_EventNotFound(t *testing.T) {
	c := newController(newCacheSource(), memstore.New())
	err := c.Leave(context.Background(), "nope", "u1")
	require.ErrorIs(t, err, ErrEventNotFound)
}

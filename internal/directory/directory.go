package directory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/forgo/pickup/internal/model"
	"github.com/forgo/pickup/internal/remote"
)

// Directory is the live event cache. It is the exclusive owner of the
// cache; everything else reads copies.
type Directory struct {
	remote remote.Store
	log    *slog.Logger

	mu      sync.Mutex
	sub     remote.Subscription
	events  []model.Event
	lastErr error
	started bool

	changes chan struct{}
}

// Config holds dependencies for the directory.
type Config struct {
	Remote remote.Store
	Logger *slog.Logger
}

// New creates a directory. Call Start to begin syncing.
func New(cfg Config) *Directory {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Directory{
		remote:  cfg.Remote,
		log:     log,
		changes: make(chan struct{}, 1),
	}
}

// Start opens the events subscription, ordered by start time ascending.
// Calling Start while already started is a no-op.
func (d *Directory) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return nil
	}

	sub, err := d.remote.Subscribe(ctx, remote.EventsCollection, model.FieldDate, false)
	if err != nil {
		return err
	}
	d.sub = sub
	d.started = true
	go d.drain(sub)
	return nil
}

// Stop cancels the subscription. Safe to call multiple times; Start may
// be called again afterwards.
func (d *Directory) Stop() {
	d.mu.Lock()
	sub := d.sub
	d.sub = nil
	d.started = false
	d.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}

// Snapshot returns a copy of the cache, ordered by start time ascending
// with ties broken by ID.
func (d *Directory) Snapshot() []model.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Event, len(d.events))
	copy(out, d.events)
	return out
}

// Event looks up a single cached event by ID.
func (d *Directory) Event(id string) (model.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ev := range d.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Event{}, false
}

// Err returns the latest subscription error, or nil if the most recent
// delivery succeeded.
func (d *Directory) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Changes signals cache updates. The channel carries at most one pending
// notification; consumers re-derive their projections when it fires.
func (d *Directory) Changes() <-chan struct{} {
	return d.changes
}

func (d *Directory) drain(sub remote.Subscription) {
	for upd := range sub.Updates() {
		d.apply(upd)
	}
}

// apply folds one delivery into the cache: errors are recorded without
// touching the last good snapshot, document sets replace the cache
// wholesale in receipt order.
func (d *Directory) apply(upd remote.Update) {
	if upd.Err != nil {
		d.mu.Lock()
		d.lastErr = upd.Err
		d.mu.Unlock()
		d.log.Warn("events subscription error", slog.String("error", upd.Err.Error()))
		d.notify()
		return
	}

	events := make([]model.Event, 0, len(upd.Docs))
	for _, doc := range upd.Docs {
		ev, anomalies := model.DecodeEvent(doc.ID, doc.Fields)
		for _, a := range anomalies {
			d.log.Warn("decode anomaly",
				slog.String("doc", a.Collection+"/"+a.DocID),
				slog.String("field", a.Field),
				slog.String("detail", a.Detail),
			)
		}
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartTime.Before(events[j].StartTime)
	})

	d.mu.Lock()
	d.events = events
	d.lastErr = nil
	d.mu.Unlock()
	d.notify()
}

func (d *Directory) notify() {
	select {
	case d.changes <- struct{}{}:
	default:
	}
}

package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forgo/pickup/internal/remote"
)

// Store is an in-memory implementation of remote.Store.
type Store struct {
	mu   sync.Mutex
	data map[string]map[string]map[string]any
	subs []*subscription

	// Error injection: when set, the corresponding operation fails.
	GetErr       error
	SetErr       error
	UpdateErr    error
	DeleteErr    error
	SubscribeErr error

	// Call counters for asserting on remote traffic.
	UpdateCalls int
	SetCalls    int
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string]map[string]map[string]any)}
}

// Seed inserts a document without notifying subscribers. Use it to set
// up state before the code under test subscribes.
func (s *Store) Seed(collection, id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(collection, id, fields)
}

// Doc returns a stored document's fields for assertions.
func (s *Store) Doc(collection, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.data[collection]
	if !ok {
		return nil, false
	}
	fields, ok := docs[id]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out, true
}

// EmitError pushes an in-band error to every subscription on the
// collection, simulating a transport failure that does not end the
// stream.
func (s *Store) EmitError(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if !sub.closed && sub.collection == collection {
			sub.send(remote.Update{Err: err})
		}
	}
}

// Subscribe implements remote.Store.
func (s *Store) Subscribe(ctx context.Context, collection, orderBy string, desc bool) (remote.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SubscribeErr != nil {
		return nil, s.SubscribeErr
	}
	sub := &subscription{
		store:      s,
		collection: collection,
		orderBy:    orderBy,
		desc:       desc,
		ch:         make(chan remote.Update, 64),
	}
	s.subs = append(s.subs, sub)
	sub.send(remote.Update{Docs: s.snapshotLocked(sub)})
	return sub, nil
}

// SubscribeDoc implements remote.Store.
func (s *Store) SubscribeDoc(ctx context.Context, collection, id string) (remote.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SubscribeErr != nil {
		return nil, s.SubscribeErr
	}
	sub := &subscription{
		store:      s,
		collection: collection,
		docID:      id,
		ch:         make(chan remote.Update, 64),
	}
	s.subs = append(s.subs, sub)
	sub.send(remote.Update{Docs: s.snapshotLocked(sub)})
	return sub, nil
}

// Get implements remote.Store.
func (s *Store) Get(ctx context.Context, collection string, q remote.Query) ([]remote.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	var out []remote.Document
	for id, fields := range s.data[collection] {
		if matches(fields[q.Field], q) {
			out = append(out, remote.Document{ID: id, Fields: copyFields(fields)})
		}
	}
	return out, nil
}

// Set implements remote.Store.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetCalls++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.putLocked(collection, id, fields)
	s.broadcastLocked(collection)
	return nil
}

// Update implements remote.Store. Operations and the optional condition
// are applied atomically under the store lock, mirroring a server-side
// check-and-set.
func (s *Store) Update(ctx context.Context, collection, id string, ops []remote.FieldOp, cond *remote.Condition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	docs, ok := s.data[collection]
	if !ok {
		return remote.ErrNotFound
	}
	fields, ok := docs[id]
	if !ok {
		return remote.ErrNotFound
	}

	if cond != nil {
		limit, ok := toInt(fields[cond.LimitField])
		if !ok || len(toStringSlice(fields[cond.Field])) >= limit {
			return remote.ErrConditionFailed
		}
	}

	for _, op := range ops {
		arr := toStringSlice(fields[op.Field])
		val, _ := op.Value.(string)
		switch op.Kind {
		case remote.FieldOpArrayUnion:
			if !slices.Contains(arr, val) {
				arr = append(arr, val)
			}
		case remote.FieldOpArrayRemove:
			out := arr[:0]
			for _, v := range arr {
				if v != val {
					out = append(out, v)
				}
			}
			arr = out
		}
		fields[op.Field] = arr
	}

	s.broadcastLocked(collection)
	return nil
}

// Delete implements remote.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if docs, ok := s.data[collection]; ok {
		delete(docs, id)
	}
	s.broadcastLocked(collection)
	return nil
}

func (s *Store) putLocked(collection, id string, fields map[string]any) {
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]map[string]any)
	}
	s.data[collection][id] = copyFields(fields)
}

func (s *Store) broadcastLocked(collection string) {
	for _, sub := range s.subs {
		if !sub.closed && sub.collection == collection {
			sub.send(remote.Update{Docs: s.snapshotLocked(sub)})
		}
	}
}

func (s *Store) snapshotLocked(sub *subscription) []remote.Document {
	docs := s.data[sub.collection]
	if sub.docID != "" {
		fields, ok := docs[sub.docID]
		if !ok {
			return nil
		}
		return []remote.Document{{ID: sub.docID, Fields: copyFields(fields)}}
	}

	out := make([]remote.Document, 0, len(docs))
	for id, fields := range docs {
		out = append(out, remote.Document{ID: id, Fields: copyFields(fields)})
	}
	sort.Slice(out, func(i, j int) bool {
		a := out[i].Fields[sub.orderBy]
		b := out[j].Fields[sub.orderBy]
		if cmp := compareValues(a, b); cmp != 0 {
			if sub.desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type subscription struct {
	store      *Store
	collection string
	docID      string
	orderBy    string
	desc       bool
	ch         chan remote.Update
	closed     bool
}

func (b *subscription) Updates() <-chan remote.Update {
	return b.ch
}

func (b *subscription) Close() {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}

func (b *subscription) send(upd remote.Update) {
	select {
	case b.ch <- upd:
	default:
	}
}

func matches(v any, q remote.Query) bool {
	switch q.Op {
	case remote.OpEqualFold:
		a, aok := v.(string)
		b, bok := q.Value.(string)
		return aok && bok && strings.EqualFold(a, b)
	default:
		return v == q.Value
	}
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int:
		if bv, ok := b.(int); ok {
			return av - bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	return 0
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if arr, ok := v.([]string); ok {
			cp := make([]string, len(arr))
			copy(cp, arr)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toStringSlice(v any) []string {
	switch arr := v.(type) {
	case []string:
		return arr
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

package remote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Config holds SurrealDB connection settings.
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}

// SurrealStore implements Store on top of SurrealDB. Snapshot listeners
// are built from live queries: each live notification triggers a re-read
// of the full ordered result set, so every delivery is a complete
// snapshot in receipt order.
type SurrealStore struct {
	db     *surrealdb.DB
	config Config
	log    *slog.Logger
}

// NewSurrealStore creates a new SurrealDB-backed store.
func NewSurrealStore(cfg Config, log *slog.Logger) *SurrealStore {
	if log == nil {
		log = slog.Default()
	}
	return &SurrealStore{config: cfg, log: log}
}

// Connect establishes the connection and selects namespace and database.
func (s *SurrealStore) Connect(ctx context.Context) error {
	endpoint := fmt.Sprintf("ws://%s:%s", s.config.Host, s.config.Port)

	db, err := surrealdb.FromEndpointURLString(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if _, err := db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	}); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.db = db
	return nil
}

// Close closes the connection.
func (s *SurrealStore) Close() error {
	if s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}

// Ping verifies the connection is alive.
func (s *SurrealStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Subscribe opens a full-collection snapshot listener ordered by the
// given field.
func (s *SurrealStore) Subscribe(ctx context.Context, collection, orderBy string, desc bool) (Subscription, error) {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	sel := fmt.Sprintf("SELECT * FROM type::table($tb) ORDER BY %s %s", orderBy, dir)
	live := "LIVE SELECT * FROM type::table($tb)"
	vars := map[string]any{"tb": collection}
	return s.subscribe(ctx, collection, sel, live, vars)
}

// SubscribeDoc opens a single-document snapshot listener.
func (s *SurrealStore) SubscribeDoc(ctx context.Context, collection, id string) (Subscription, error) {
	sel := "SELECT * FROM type::thing($tb, $id)"
	live := "LIVE SELECT * FROM type::table($tb) WHERE id = type::thing($tb, $id)"
	vars := map[string]any{"tb": collection, "id": id}
	return s.subscribe(ctx, collection, sel, live, vars)
}

func (s *SurrealStore) subscribe(ctx context.Context, collection, sel, live string, vars map[string]any) (Subscription, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	liveRes, err := surrealdb.Query[models.UUID](ctx, s.db, live, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: live query failed: %v", ErrQuery, err)
	}
	if liveRes == nil || len(*liveRes) == 0 {
		return nil, fmt.Errorf("%w: live query returned no id", ErrQuery)
	}
	liveID := (*liveRes)[0].Result

	notifs, err := s.db.LiveNotifications(liveID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: live notifications: %v", ErrQuery, err)
	}

	sub := &liveSubscription{
		store:  s,
		liveID: liveID.String(),
		sel:    sel,
		vars:   vars,
		notifs: notifs,
		ch:     make(chan Update, 16),
		done:   make(chan struct{}),
	}
	go sub.run(ctx)

	s.log.Debug("subscription opened",
		slog.String("collection", collection),
		slog.String("live_id", sub.liveID),
	)
	return sub, nil
}

// Get runs a one-shot single-predicate query.
func (s *SurrealStore) Get(ctx context.Context, collection string, q Query) ([]Document, error) {
	var cond string
	switch q.Op {
	case OpEqualFold:
		cond = fmt.Sprintf("string::lowercase(%s) = string::lowercase($value)", q.Field)
	default:
		cond = fmt.Sprintf("%s = $value", q.Field)
	}
	query := fmt.Sprintf("SELECT * FROM type::table($tb) WHERE %s", cond)
	vars := map[string]any{"tb": collection, "value": q.Value}
	return s.selectDocs(ctx, query, vars)
}

// Set writes a whole document, creating or replacing it.
func (s *SurrealStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if s.db == nil {
		return ErrConnection
	}
	query := "UPSERT type::thing($tb, $id) CONTENT $content"
	vars := map[string]any{"tb": collection, "id": id, "content": fields}
	if _, err := surrealdb.Query[any](ctx, s.db, query, vars); err != nil {
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return nil
}

// Update applies atomic field operations in a single UPDATE statement.
// SurrealDB evaluates the statement atomically, so the optional condition
// holds at write time or the update does not apply.
func (s *SurrealStore) Update(ctx context.Context, collection, id string, ops []FieldOp, cond *Condition) error {
	if s.db == nil {
		return ErrConnection
	}

	var sets []string
	vars := map[string]any{"tb": collection, "id": id}
	for i, op := range ops {
		param := fmt.Sprintf("v%d", i)
		switch op.Kind {
		case FieldOpArrayUnion:
			sets = append(sets, fmt.Sprintf("%s = array::union(%s, [$%s])", op.Field, op.Field, param))
		case FieldOpArrayRemove:
			sets = append(sets, fmt.Sprintf("%s = array::difference(%s, [$%s])", op.Field, op.Field, param))
		default:
			return fmt.Errorf("%w: unsupported field op %q", ErrQuery, op.Kind)
		}
		vars[param] = op.Value
	}

	query := "UPDATE type::thing($tb, $id) SET " + strings.Join(sets, ", ")
	if cond != nil {
		query += fmt.Sprintf(" WHERE array::len(%s) < %s", cond.Field, cond.LimitField)
	}
	query += " RETURN AFTER"

	docs, err := s.selectDocs(ctx, query, vars)
	if err != nil {
		return err
	}
	if len(docs) > 0 {
		return nil
	}

	// Nothing updated: either the document is missing or the condition
	// was false. Distinguish with a follow-up read.
	if cond != nil {
		existing, err := s.selectDocs(ctx, "SELECT * FROM type::thing($tb, $id)",
			map[string]any{"tb": collection, "id": id})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrConditionFailed
		}
	}
	return ErrNotFound
}

// Delete removes a document.
func (s *SurrealStore) Delete(ctx context.Context, collection, id string) error {
	if s.db == nil {
		return ErrConnection
	}
	query := "DELETE type::thing($tb, $id)"
	vars := map[string]any{"tb": collection, "id": id}
	if _, err := surrealdb.Query[any](ctx, s.db, query, vars); err != nil {
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return nil
}

func (s *SurrealStore) selectDocs(ctx context.Context, query string, vars map[string]any) ([]Document, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[[]map[string]any](ctx, s.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	first := (*results)[0]
	if first.Status != "OK" {
		if first.Error != nil {
			return nil, fmt.Errorf("%w: %s", ErrQuery, first.Error.Message)
		}
		return nil, ErrQuery
	}

	docs := make([]Document, 0, len(first.Result))
	for _, row := range first.Result {
		docs = append(docs, Document{ID: recordKey(row["id"]), Fields: row})
	}
	return docs, nil
}

// recordKey extracts the bare document key from a SurrealDB record ID,
// which can arrive in several shapes depending on the decode path.
func recordKey(id any) string {
	switch v := id.(type) {
	case string:
		if _, key, ok := strings.Cut(v, ":"); ok {
			return key
		}
		return v
	case models.RecordID:
		return fmt.Sprintf("%v", v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%v", v.ID)
		}
	case map[string]any:
		if key, ok := v["id"].(string); ok {
			return key
		}
	}
	return ""
}

// liveSubscription adapts a SurrealDB live query into the snapshot
// listener contract: notifications are used as change triggers and every
// delivery is a fresh full read.
type liveSubscription struct {
	store  *SurrealStore
	liveID string
	sel    string
	vars   map[string]any
	notifs chan connection.Notification
	ch     chan Update
	done   chan struct{}
	once   sync.Once
}

func (b *liveSubscription) Updates() <-chan Update {
	return b.ch
}

func (b *liveSubscription) Close() {
	b.once.Do(func() {
		close(b.done)
		ctx := context.Background()
		if err := surrealdb.Kill(ctx, b.store.db, b.liveID); err != nil {
			b.store.log.Debug("kill live query", slog.String("error", err.Error()))
		}
	})
}

func (b *liveSubscription) run(ctx context.Context) {
	defer close(b.ch)

	b.emit(ctx)
	for {
		select {
		case <-b.done:
			return
		case <-ctx.Done():
			return
		case _, ok := <-b.notifs:
			if !ok {
				return
			}
			b.emit(ctx)
		}
	}
}

func (b *liveSubscription) emit(ctx context.Context) {
	docs, err := b.store.selectDocs(ctx, b.sel, b.vars)
	var upd Update
	if err != nil {
		upd = Update{Err: err}
	} else {
		upd = Update{Docs: docs}
	}
	select {
	case b.ch <- upd:
	case <-b.done:
	case <-ctx.Done():
	}
}

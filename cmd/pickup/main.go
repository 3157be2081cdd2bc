package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/forgo/pickup/internal/config"
	"github.com/forgo/pickup/internal/directory"
	"github.com/forgo/pickup/internal/events"
	"github.com/forgo/pickup/internal/identity"
	"github.com/forgo/pickup/internal/membership"
	"github.com/forgo/pickup/internal/remote"
	"github.com/forgo/pickup/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Connect to the remote store
	store := remote.NewSurrealStore(remote.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	}, logger)

	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		slog.Error("failed to connect to remote store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	slog.Info("connected to remote store",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Wire the engine
	provider := identity.NewRemoteProvider(identity.RemoteProviderConfig{
		Store:  store,
		Logger: logger,
	})
	defer provider.Close()

	sessions := session.NewStore(session.StoreConfig{
		Provider: provider,
		Remote:   store,
		Logger:   logger,
	})
	defer sessions.Close()

	dir := directory.New(directory.Config{
		Remote: store,
		Logger: logger,
	})
	if err := dir.Start(ctx); err != nil {
		slog.Error("failed to start event directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dir.Stop()

	eng := &engine{
		sessions:   sessions,
		directory:  dir,
		membership: membership.NewController(membership.Config{
			Events: dir,
			Remote: store,
			Logger: logger,
		}),
		events: events.NewWriter(events.Config{
			Remote: store,
			Logger: logger,
		}),
	}

	done := make(chan struct{})
	go eng.run(done)

	slog.Info("pickup sync engine running")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(done)

	slog.Info("shutting down")
	if err := sessions.SignOut(ctx); err != nil {
		slog.Warn("sign-out on shutdown", slog.String("error", err.Error()))
	}
}

// engine is the composition root: the full client surface wired onto one
// remote store. The daemon only observes; Join/Leave/Create are the API
// for whatever embeds these components.
type engine struct {
	sessions   *session.Store
	directory  *directory.Directory
	membership *membership.Controller
	events     *events.Writer
}

// run logs session transitions and directory activity until done closes.
func (e *engine) run(done <-chan struct{}) {
	sessionCh, cancelObserve := e.sessions.Observe()
	defer cancelObserve()

	for {
		select {
		case <-done:
			return
		case sess, ok := <-sessionCh:
			if !ok {
				return
			}
			attrs := []any{slog.String("state", string(sess.State))}
			if sess.User != nil {
				attrs = append(attrs, slog.String("username", sess.User.Username))
			}
			slog.Info("session changed", attrs...)
		case <-e.directory.Changes():
			if err := e.directory.Err(); err != nil {
				slog.Warn("directory degraded", slog.String("error", err.Error()))
				continue
			}
			slog.Info("directory updated", slog.Int("events", len(e.directory.Snapshot())))
		}
	}
}

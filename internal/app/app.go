package app

import (
	"context"
	"fmt"

	"sentidash/internal/config"
	"sentidash/internal/logger"
	"sentidash/internal/session"
	"sentidash/internal/store/journal"
	"sentidash/internal/transport/http/api"

	"golang.org/x/sync/errgroup"
)

// App owns the running session and its HTTP surface.
type App struct {
	cfg     *config.Config
	session *session.Session
	server  *api.Server
	journal *journal.Store
	Summary *StartupSummary
}

// NewApp builds the application from cfg without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run serves until ctx is cancelled, then waits for in-flight dispatches.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.session == nil {
		return fmt.Errorf("session not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	defer a.Close()

	group, ctx := errgroup.WithContext(ctx)
	if a.server != nil {
		group.Go(func() error {
			if err := a.server.Start(ctx); err != nil {
				return fmt.Errorf("api server error: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		<-ctx.Done()
		a.session.Wait()
		return nil
	})
	return group.Wait()
}

// Close releases the journal. Safe to call more than once.
func (a *App) Close() {
	if a == nil || a.journal == nil {
		return
	}
	if err := a.journal.Close(); err != nil {
		logger.Warnf("close dispatch journal: %v", err)
	}
	a.journal = nil
}

// Session exposes the running session (for tests and embedding).
func (a *App) Session() *session.Session {
	if a == nil {
		return nil
	}
	return a.session
}

func (a *App) Server() *api.Server {
	if a == nil {
		return nil
	}
	return a.server
}

package app

import (
	"context"
	"fmt"

	"sentidash/internal/config"
	"sentidash/internal/gateway/classifier"
	"sentidash/internal/input"
	"sentidash/internal/logger"
	"sentidash/internal/predict"
	"sentidash/internal/schema"
	"sentidash/internal/session"
	"sentidash/internal/store/journal"
	"sentidash/internal/transport/http/api"
)

type AppBuilder struct {
	cfg *config.Config

	clientFn    func(config.ServiceConfig) (predict.Poster, error)
	schemaFn    func(config.SchemaConfig) (*schema.Registry, error)
	journalFn   func(config.JournalConfig) (*journal.Store, error)
	apiServerFn func(config.AppConfig, *session.Session, *journal.Store) (*api.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithPoster replaces the classifier client, mainly for tests.
func WithPoster(p predict.Poster) AppBuilderOption {
	return func(b *AppBuilder) {
		b.clientFn = func(config.ServiceConfig) (predict.Poster, error) { return p, nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:         cfg,
		clientFn:    buildClassifierClient,
		schemaFn:    buildSchemaRegistry,
		journalFn:   buildJournal,
		apiServerFn: buildAPIServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b == nil || b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	client, err := b.clientFn(cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("init classifier client: %w", err)
	}
	schemas, err := b.schemaFn(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("init response schemas: %w", err)
	}
	dispatcher := predict.NewDispatcher(client, cfg.Service.Endpoints, schemas)

	store, err := b.journalFn(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("init dispatch journal: %w", err)
	}
	if store != nil {
		dispatcher.AddObserver(store)
	}

	sess := session.New(input.NewTracker(), dispatcher)
	sess.Subscribe(session.ObserverFunc(logChange))

	server, err := b.apiServerFn(cfg.App, sess, store)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("init api server: %w", err)
	}

	return &App{
		cfg:     cfg,
		session: sess,
		server:  server,
		journal: store,
		Summary: newStartupSummary(cfg, schemas),
	}, nil
}

func buildClassifierClient(cfg config.ServiceConfig) (predict.Poster, error) {
	return classifier.NewClient(cfg)
}

func buildSchemaRegistry(cfg config.SchemaConfig) (*schema.Registry, error) {
	return schema.NewRegistry(cfg.Path, cfg.Watch)
}

func buildJournal(cfg config.JournalConfig) (*journal.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return journal.NewStore(cfg.MaxEntries)
}

func buildAPIServer(cfg config.AppConfig, sess *session.Session, store *journal.Store) (*api.Server, error) {
	var log api.DispatchLog
	if store != nil {
		log = store
	}
	return api.NewServer(api.ServerConfig{Addr: cfg.HTTPAddr, Session: sess, Journal: log})
}

func logChange(c session.Change) {
	if c.Err != nil {
		logger.Warnf("predict %s failed: %v", c.Target, c.Err)
		return
	}
	logger.Debugf("predict %s merged", c.Target)
}

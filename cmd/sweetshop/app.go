package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/application/usecase"
	"github.com/sweetshop/sweetshop/infrastructure/adapter/restapi"
	"github.com/sweetshop/sweetshop/infrastructure/config"
	"github.com/sweetshop/sweetshop/infrastructure/http/client"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
	"github.com/sweetshop/sweetshop/infrastructure/sessionstore"
	"github.com/sweetshop/sweetshop/infrastructure/storage/filekv"
	"github.com/sweetshop/sweetshop/infrastructure/storage/memkv"
	"github.com/sweetshop/sweetshop/infrastructure/storage/rediskv"
)

// App is the wired client: one session manager over one session store.
type App struct {
	cfg      *config.Config
	logger   logger.Logger
	sessions *usecase.SessionManager
	guard    *usecase.RouteGuard
	catalog  *usecase.CatalogUseCase
	out      io.Writer
	closers  []io.Closer
}

// NewApp builds the client from cfg and restores any persisted session.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (*App, error) {
	kv, closer, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return newAppWithKV(ctx, cfg, log, out, kv, closer)
}

func newAppWithKV(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer, kv outbound.KeyValueStore, closer io.Closer) (*App, error) {
	store := sessionstore.New(kv, log)

	api, err := client.New(client.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: "sweetshop-cli/" + Version,
	}, store, log)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	app := &App{
		cfg:    cfg,
		logger: log,
		guard:  usecase.NewRouteGuard(),
		out:    out,
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	app.sessions = usecase.NewSessionManager(store, restapi.NewAuthGateway(api), outbound.NavigatorFunc(app.navigate), log)
	app.catalog = usecase.NewCatalogUseCase(restapi.NewSweetGateway(api), app.sessions, log)
	app.sessions.Initialize(ctx)
	return app, nil
}

func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (outbound.KeyValueStore, io.Closer, error) {
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return memkv.New(), nil, nil
	case config.BackendRedis:
		store, err := rediskv.New(ctx, rediskv.Config{URL: cfg.RedisURL, Prefix: cfg.RedisPrefix}, log)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		path := cfg.SessionFile
		if path == "" {
			p, err := filekv.DefaultPath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		return filekv.New(path, log), nil, nil
	}
}

// navigate turns view locations into the CLI command that shows them.
func (a *App) navigate(_ context.Context, target string) error {
	_, err := fmt.Fprintf(a.out, "Next: %s\n", commandFor(target))
	return err
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn(context.Background(), "Failed to close resource", map[string]interface{}{"error": err.Error()})
		}
	}
}

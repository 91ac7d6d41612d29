package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/handler/api"
	"EdgarPull/internal/service/directory"
	"EdgarPull/internal/service/feedclient"
	"EdgarPull/internal/service/respcache"
	"EdgarPull/pkg/config"
	xhttp "EdgarPull/pkg/http"
	applogger "EdgarPull/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    *api.FilingsEchoHandler
	hub        *api.ProgressHub
	client     *feedclient.Client
	dir        *directory.Directory
	cache      *respcache.Cache
	store      repository.FilingStore
	storage    repository.Storage
	pub        repository.Publisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler *api.FilingsEchoHandler,
	hub *api.ProgressHub,
	client *feedclient.Client,
	dir *directory.Directory,
	cache *respcache.Cache,
	store repository.FilingStore,
	storage repository.Storage,
	pub repository.Publisher,
) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		handler: handler,
		hub:     hub,
		client:  client,
		dir:     dir,
		cache:   cache,
		store:   store,
		storage: storage,
		pub:     pub,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequestLogging(a.log, time.Second),
	)

	// Repeated error logs aggregate onto the Kafka producer when one is
	// configured.
	if lp, ok := a.pub.(applogger.Publisher); ok {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.Topic + ".logs",
			Publisher:      lp,
		})
	}

	// The bulk company list is large and the upstream slow; load it in the
	// background so startup stays fast. The static fallback set answers
	// lookups until it lands.
	if a.cfg.Feed.CompanyListURL != "" {
		go a.loadCompanyList(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("env", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) loadCompanyList(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := a.dir.LoadBulk(loadCtx, a.client, a.cfg.Feed.CompanyListURL); err != nil {
		a.log.Warn("company list load failed, using fallback set", applogger.Error(err))
		return
	}
	a.log.Info("company list loaded", applogger.Int("entries", a.dir.Len()))
}

// shutdown gracefully stops the server and releases backends.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.hub != nil {
		a.hub.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("filing store close error", applogger.Error(err))
		}
	}
	// Flush aggregated logs before the producer goes away.
	a.log.RemoveCollector()
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.log.Warn("storage close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}

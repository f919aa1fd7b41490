package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hausasoft/elearn-notify/internal/db/migrations"
	"github.com/hausasoft/elearn-notify/modules/inbox"
	"github.com/hausasoft/elearn-notify/pkg/compose"
	"github.com/hausasoft/elearn-notify/pkg/config"
	"github.com/hausasoft/elearn-notify/pkg/dispatch"
	"github.com/hausasoft/elearn-notify/pkg/email"
	"github.com/hausasoft/elearn-notify/pkg/fanout"
	"github.com/hausasoft/elearn-notify/pkg/httpserver"
	"github.com/hausasoft/elearn-notify/pkg/logger"
	mongoconn "github.com/hausasoft/elearn-notify/pkg/mongo"
	"github.com/hausasoft/elearn-notify/pkg/notifications"
	"github.com/hausasoft/elearn-notify/pkg/pg"
	"github.com/hausasoft/elearn-notify/pkg/queue"
	"github.com/hausasoft/elearn-notify/pkg/realtime"
	redisconn "github.com/hausasoft/elearn-notify/pkg/redis"
	"github.com/hausasoft/elearn-notify/pkg/requestid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "notifyd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	// Readiness checks, filled by the drivers that have a backend to probe.
	checks := make(map[string]func(context.Context) error)

	// Inbox storage, selected by driver.
	storage, closeStorage, err := newStorage(ctx, cfg, checks, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	// Realtime transport.
	publisher, streamer, closeRealtime, err := newRealtime(ctx, cfg, checks, log)
	if err != nil {
		return err
	}
	defer closeRealtime()

	// Email sender.
	sender, err := newSender(cfg)
	if err != nil {
		return err
	}
	renderer, err := email.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to build email renderer: %w", err)
	}

	dispatcher := dispatch.New(storage, sender, renderer, publisher,
		dispatch.WithCollector(dispatch.NewLogCollector(log)),
	)
	composer := compose.New(compose.WithBaseURL(cfg.BaseURL))

	var directory fanout.Directory = emptyDirectory{}
	if cfg.DirectoryURL != "" {
		directory = newPlatformDirectory(cfg.DirectoryURL)
	}

	// Queue: enqueuer on the request path, worker draining tasks.
	var queueCfg queue.Config
	if err := config.Load(&queueCfg); err != nil {
		return fmt.Errorf("failed to load queue config: %w", err)
	}
	taskStore := queue.NewMemoryStorage()
	defer taskStore.Close()

	enqueuer, err := queue.NewEnqueuer(taskStore)
	if err != nil {
		return fmt.Errorf("failed to create enqueuer: %w", err)
	}
	worker, err := queue.NewWorker(taskStore,
		queue.WithPullInterval(queueCfg.PollInterval),
		queue.WithLockTimeout(queueCfg.LockTimeout),
		queue.WithMaxConcurrentTasks(queueCfg.MaxConcurrentTasks),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	worker.RegisterHandler(fanout.NewHandler(composer, dispatcher, directory, log).TaskHandler())

	emitter := fanout.NewEmitter(enqueuer)

	router := newRouter(cfg, emitter, storage, streamer, checks, log)

	var serverCfg httpserver.Config
	if err := config.Load(&serverCfg); err != nil {
		return fmt.Errorf("failed to load http config: %w", err)
	}
	server := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(worker.Run(ctx))
	g.Go(func() error {
		return server.Run(ctx, router)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newRouter(cfg appConfig, emitter *fanout.Emitter, storage notifications.Storage, streamer realtime.Streamer, checks map[string]func(context.Context) error, log *slog.Logger) http.Handler {
	svc := inbox.NewService(notifications.NewInbox(storage), streamer, inbox.WithLogger(log))

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(log, checks))

	r.Post("/internal/events", ingestHandler(emitter, cfg.IngestToken, log))

	r.Route("/notifications", func(r chi.Router) {
		r.Use(inbox.IdentityMiddleware(identityFromHeader(cfg.IdentityHeader)))
		r.Mount("/", svc.Router())
	})

	return r
}

func identityFromHeader(header string) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		id := r.Header.Get(header)
		if id == "" {
			return "", fmt.Errorf("missing %s header", header)
		}
		return id, nil
	}
}

func newStorage(ctx context.Context, cfg appConfig, checks map[string]func(context.Context) error, log *slog.Logger) (notifications.Storage, func(), error) {
	switch cfg.StorageDriver {
	case "postgres":
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return nil, nil, fmt.Errorf("failed to load postgres config: %w", err)
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		checks["postgres"] = pg.Healthcheck(pool)
		return notifications.NewPGStorage(pool), pool.Close, nil

	case "mongo":
		var mongoCfg mongoconn.Config
		if err := config.Load(&mongoCfg); err != nil {
			return nil, nil, fmt.Errorf("failed to load mongo config: %w", err)
		}
		db, err := mongoconn.NewWithDatabase(ctx, mongoCfg, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		checks["mongo"] = mongoconn.Healthcheck(db.Client())
		closeFn := func() { _ = db.Client().Disconnect(context.Background()) }
		store := notifications.NewMongoStorage(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return store, closeFn, nil

	case "memory":
		return notifications.NewMemoryStorage(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newRealtime(ctx context.Context, cfg appConfig, checks map[string]func(context.Context) error, log *slog.Logger) (realtime.Publisher, realtime.Streamer, func(), error) {
	switch cfg.RealtimeDriver {
	case "redis":
		var redisCfg redisconn.Config
		if err := config.Load(&redisCfg); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load redis config: %w", err)
		}
		client, err := redisconn.Connect(ctx, redisCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		checks["redis"] = redisconn.Healthcheck(client)
		hub := realtime.NewRedisHub(client, cfg.RealtimeBuffer, realtime.WithRedisHubLogger(log))
		return hub, hub, func() { _ = client.Close() }, nil

	case "memory":
		hub := realtime.NewHub(cfg.RealtimeBuffer)
		return hub, hub, func() { _ = hub.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown realtime driver %q", cfg.RealtimeDriver)
	}
}

func newSender(cfg appConfig) (email.EmailSender, error) {
	switch cfg.EmailDriver {
	case "postmark":
		var emailCfg email.Config
		if err := config.Load(&emailCfg); err != nil {
			return nil, fmt.Errorf("failed to load email config: %w", err)
		}
		return email.NewPostmarkClient(emailCfg)

	case "dev":
		return email.NewDevSender(cfg.EmailDevDir), nil

	default:
		return nil, fmt.Errorf("unknown email driver %q", cfg.EmailDriver)
	}
}

// Package server boots the application: it connects the backing stores,
// wires every service and controller together, and runs the HTTP server or
// the standalone queue worker.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adforge/adforge/app/controllers"
	"github.com/adforge/adforge/app/jobs"
	"github.com/adforge/adforge/app/repositories"
	"github.com/adforge/adforge/app/routes"
	"github.com/adforge/adforge/app/services"
	"github.com/adforge/adforge/config"
	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/cache"
	"github.com/adforge/adforge/pkg/imagegen"
	"github.com/adforge/adforge/pkg/logger"
	"github.com/adforge/adforge/pkg/metrics"
	"github.com/adforge/adforge/pkg/middleware"
	"github.com/adforge/adforge/pkg/queue"
	"github.com/adforge/adforge/pkg/realtime"
	"github.com/adforge/adforge/pkg/reqid"
	"github.com/adforge/adforge/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// app holds everything the HTTP server and the queue worker share. Both
// entry points build one and tear it down on exit.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	mongo  *mongo.Client
	db     *mongo.Database
	rdb    *redis.Client
	store  storage.Store
	hub    *realtime.Hub
	queue  *queue.Manager
	audit  *services.AuditTrail
	tokens *auth.Tokens

	lifecycle *services.Lifecycle
	authSvc   *services.AuthService
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mc, err := mongo.Connect(connectCtx, mongooptions.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := mc.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := mc.Database(cfg.Mongo.Database)

	// Redis is optional: without it the list cache is disabled and the
	// queue must use the memory driver.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(connectCtx).Err(); err != nil {
			log.Warn("redis unavailable, continuing without cache", "error", err)
			rdb = nil
		}
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	var driver queue.Driver
	switch cfg.Queue.Driver {
	case "redis":
		if rdb == nil {
			return nil, errors.New("queue driver redis requires a reachable REDIS_ADDR")
		}
		driver = queue.NewRedisDriver(rdb)
	default:
		driver = queue.NewMemoryDriver()
	}

	hub := realtime.NewHub(log)
	audit := services.NewAuditTrail(db, log)
	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	products := repositories.NewProductRepository(db)
	businesses := repositories.NewBusinessRepository(db)
	users := repositories.NewUserRepository(db)

	lifecycle := services.NewLifecycle(products, businesses, store, hub, cache.New(rdb), audit, log)
	authSvc := services.NewAuthService(users, lifecycle, tokens, log)

	generator := imagegen.New(cfg.ImageGen.URL, cfg.ImageGen.APIKey, cfg.ImageGen.Timeout)
	generation := services.NewGeneration(lifecycle, generator, store, log)

	manager := queue.NewManager(driver, log)
	jobs.Register(manager, generation)

	return &app{
		cfg:       cfg,
		log:       log,
		mongo:     mc,
		db:        db,
		rdb:       rdb,
		store:     store,
		hub:       hub,
		queue:     manager,
		audit:     audit,
		tokens:    tokens,
		lifecycle: lifecycle,
		authSvc:   authSvc,
	}, nil
}

func (a *app) close(ctx context.Context) {
	a.queue.Wait()
	a.audit.Close()
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn("close redis", "error", err)
		}
	}
	if err := a.mongo.Disconnect(ctx); err != nil {
		a.log.Warn("disconnect mongo", "error", err)
	}
}

func (a *app) router() chi.Router {
	r := chi.NewRouter()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger(a.log))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	routes.RegisterAPI(r, routes.Deps{
		Auth:     controllers.NewAuthController(a.authSvc),
		Business: controllers.NewBusinessController(a.lifecycle),
		Product:  controllers.NewProductController(a.lifecycle),
		Upload:   controllers.NewUploadController(a.lifecycle, a.store),
		AI:       controllers.NewAIController(a.lifecycle, a.queue),
		Realtime: controllers.NewRealtimeController(a.tokens, a.hub),
		Tokens:   a.tokens,
	})

	// With the local disk driver the blob URLs point back at this server.
	if a.cfg.Storage.Disk != "s3" {
		fs := http.FileServer(http.Dir(a.cfg.Storage.LocalRoot))
		r.Handle("/storage/*", http.StripPrefix("/storage/", fs))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// Run boots the full application and serves HTTP until the context is
// cancelled or a SIGINT/SIGTERM arrives.
func Run(cfg *config.Config) error {
	log := logger.New(cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	if err := repositories.EnsureIndexes(ctx, a.db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	go a.hub.Run(ctx)
	a.queue.StartWorkers(ctx, cfg.Queue.Workers)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	a.close(shutdownCtx)
	log.Info("shutdown complete")
	return nil
}

// RunWorker boots only the queue consumer. It is meant to run alongside a
// server process that dispatches onto the shared Redis queue.
func RunWorker(cfg *config.Config) error {
	log := logger.New(cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	go a.hub.Run(ctx)
	a.queue.StartWorkers(ctx, cfg.Queue.Workers)
	log.Info("queue workers started", "driver", cfg.Queue.Driver, "workers", cfg.Queue.Workers)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.close(shutdownCtx)
	return nil
}

// EnsureIndexes creates the MongoDB indexes and exits.
func EnsureIndexes(cfg *config.Config) error {
	log := logger.New(cfg.Server.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mc, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() { _ = mc.Disconnect(ctx) }()

	if err := repositories.EnsureIndexes(ctx, mc.Database(cfg.Mongo.Database)); err != nil {
		return err
	}
	log.Info("indexes ensured", "database", cfg.Mongo.Database)
	return nil
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-arquest/internal/config"
	"backend-arquest/internal/db"
	"backend-arquest/internal/server"
	"backend-arquest/internal/spawn"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	migrate         func(context.Context, string) error
	loadCatalog     func(context.Context, config.Config, db.Querier) (*spawn.Catalog, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, *spawn.Catalog, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		migrate:         db.RunMigrations,
		loadCatalog:     loadCatalog,
		notify:          signal.Notify,
		run:             Run,
	}
}

func loadCatalog(ctx context.Context, cfg config.Config, q db.Querier) (*spawn.Catalog, error) {
	src, err := spawn.NewSource(cfg, q)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	ctx := context.Background()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Printf("postgres connection failed: %v", err)
	}

	if pg != nil && cfg.RunMigrations {
		if err := deps.migrate(ctx, cfg.PostgresURL); err != nil {
			log.Printf("migrations failed: %v", err)
		}
	}

	var q db.Querier
	if pg != nil {
		q = pg
	}
	catalog, err := deps.loadCatalog(ctx, cfg, q)
	if err != nil {
		log.Printf("spawn catalog load failed: %v", err)
	} else {
		log.Printf("loaded %d spawns from %s catalog", catalog.Len(), cfg.CatalogSource)
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(ctx, cfg, pg, rdb, catalog, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, catalog *spawn.Catalog, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(cfg, pg, rdb, catalog)
	defer srv.Close()

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}

package server

import (
	"log"

	"backend-arquest/internal/auth"
	"backend-arquest/internal/config"
	"backend-arquest/internal/game"
	"backend-arquest/internal/interaction"
	"backend-arquest/internal/ledger"
	"backend-arquest/internal/spawn"
	"backend-arquest/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Stream  *stream.Hub
	Catalog *spawn.Catalog
	Game    *game.Service
}

// NewServer wires the HTTP app. Without Postgres the ledger is absent and
// interactions answer 502; without Redis the cache and hub stay in process.
func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, catalog *spawn.Catalog) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	if catalog == nil {
		catalog, _ = spawn.NewCatalog(nil)
	}

	var ledgerClient ledger.Client
	if db != nil {
		ledgerClient = ledger.NewService(db)
	} else {
		log.Printf("no postgres connection: ledger actions are unavailable")
	}

	var storage interaction.Storage = interaction.NewMemoryStorage()
	if redisClient != nil {
		storage = interaction.NewRedisStorage(redisClient)
	}

	hub := stream.NewHub(redisClient)

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      db,
		Redis:   redisClient,
		Stream:  hub,
		Catalog: catalog,
		Game: game.NewService(catalog, ledgerClient, storage, hub, game.Options{
			FOVDegrees: cfg.FOVDegrees,
			MaxVisible: cfg.MaxVisible,
		}),
	}

	registerRoutes(s)
	return s
}

// Close ends open sessions and stops the hub relay.
func (s *Server) Close() {
	s.Game.Close()
	s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"spawns": s.Catalog.Len(),
			"ledger": s.DB != nil,
			"redis":  s.Redis != nil,
		})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	spawn.RegisterRoutes(s.App.Group("/spawns"), s.Catalog)
	game.RegisterRoutes(s.App.Group("/sessions"), s.Game, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

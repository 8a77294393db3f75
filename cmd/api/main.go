package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/application/sales"
	"github.com/Ey-luccas/luanova-sub000/internal/application/usecase"
	"github.com/Ey-luccas/luanova-sub000/internal/infrastructure/memory"
	"github.com/Ey-luccas/luanova-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/Ey-luccas/luanova-sub000/internal/interfaces/http"
	"github.com/Ey-luccas/luanova-sub000/internal/interfaces/ws"
	"github.com/Ey-luccas/luanova-sub000/pkg/config"
	"github.com/Ey-luccas/luanova-sub000/pkg/logger"
	"github.com/Ey-luccas/luanova-sub000/pkg/telemetry"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	// Los días de los reportes se cortan en esta zona, tanto en Go como en SQL.
	time.Local = cfg.App.Location

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tel, providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTEL.Enabled,
		Endpoint:    cfg.OTEL.Endpoint,
		ServiceName: cfg.OTEL.ServiceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar OpenTelemetry")
	}

	var (
		txRunner inventory.TxRunner
		repos    inventory.TxRepos
	)
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.New()
		txRunner, repos = store, store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, postgres.WithTracer(tel.Tracer))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner, repos = postgres.NewTxRunner(pool, cfg.DB.LockTimeout), postgres.NewRepos(pool)
	}

	hub := ws.NewHub(log.Component("ws"), 256)
	go hub.Run(ctx)

	productUC := usecase.NewProductUseCase(repos.Products)
	movementUC := inventory.NewMovementUseCase(txRunner, repos.Movements, hub, log.Component("ledger"), tel)
	unitUC := inventory.NewUnitUseCase(txRunner, repos.Products, repos.Units, hub, log.Component("units"), tel)
	salesUC := sales.NewSalesUseCase(txRunner, repos.Sales, hub, log.Component("sales"), tel)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Luanova Inventory API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger no disponible")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.App.StoreDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		Movements: movementUC,
		Units:     unitUC,
		Sales:     salesUC,
		Hub:       hub,
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de OpenTelemetry")
	}

	log.Info().Msg("aplicación detenida")
}

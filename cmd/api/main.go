// @title        Tienda Inventory API
// @version      1.0
// @description  API de inventario de la tienda: ajustes de stock, alertas, reportes y descuento por pedidos.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token JWT>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/jhoicas/tienda-api/docs"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/bootstrap"
	"github.com/jhoicas/tienda-api/internal/infrastructure/notify"
	httpRouter "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
	"github.com/jhoicas/tienda-api/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Enabled:     cfg.Tracing.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	stores, err := bootstrap.OpenStores(ctx, cfg, prometheus.DefaultRegisterer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer stores.Close()

	// Difusión de alertas por Redis pub/sub (opcional)
	var notifier inventory.AlertNotifier
	if cfg.Redis.Enabled() {
		rn, err := notify.NewRedisNotifier(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rn.Close()
		notifier = rn
		log.Info().Str("channel", rn.Channel()).Msg("alertas publicadas en Redis")
	}

	uc := bootstrap.NewUseCases(stores, notifier, log)

	app := httpRouter.NewApp(cfg.App.Name, cfg.HTTP.BodyLimitMB)

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tienda Inventory API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Adjust:    uc.Adjust,
		Bulk:      uc.Bulk,
		Alerts:    uc.Alerts,
		Settings:  uc.Settings,
		Queries:   uc.Queries,
		Report:    uc.Report,
		Orders:    uc.Orders,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Log:       log,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciar trazas")
	}

	log.Info().Msg("aplicación detenida")
}

// Command invctl administra el inventario sin levantar el servidor HTTP:
// migraciones, carga masiva por CSV, resumen, exportación del reporte y emisión de tokens de servicio.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/tienda-api/internal/bootstrap"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "invctl"})

	a := &cli{
		cfg: cfg,
		log: log,
		open: func(ctx context.Context) (*bootstrap.Stores, error) {
			return bootstrap.OpenStores(ctx, cfg, prometheus.NewRegistry(), log)
		},
	}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/bootstrap"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/jwt"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// cli dependencias compartidas por los subcomandos.
type cli struct {
	cfg  *config.Config
	log  *logger.Logger
	open func(ctx context.Context) (*bootstrap.Stores, error)
}

func newRootCmd(a *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "invctl",
		Short:         "Administración del inventario de la tienda",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(a),
		newImportCmd(a),
		newSummaryCmd(a),
		newReportCmd(a),
		newTokenCmd(a),
	)
	return root
}

// withUseCases abre el almacenamiento, arma los casos de uso y ejecuta fn.
func (a *cli) withUseCases(ctx context.Context, fn func(*bootstrap.UseCases) error) error {
	st, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(bootstrap.NewUseCases(st, nil, a.log))
}

// --- migrate ---

func newMigrateCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones del esquema de inventario (PostgreSQL)",
	}
	up := &cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Migrate(a.cfg, a.log, func(m *postgres.Migrator) error { return m.Up() })
		},
	}
	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revierte migraciones (--steps 0 revierte todas)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Migrate(a.cfg, a.log, func(m *postgres.Migrator) error { return m.Down(steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "cantidad de migraciones a revertir")
	version := &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión actual del esquema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Migrate(a.cfg, a.log, func(m *postgres.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "versión %d (dirty=%t)\n", v, dirty)
				return nil
			})
		},
	}
	cmd.AddCommand(up, down, version)
	return cmd
}

// --- import ---

func newImportCmd(a *cli) *cobra.Command {
	var charset, userID string
	cmd := &cobra.Command{
		Use:   "import <archivo.csv>",
		Short: "Ajuste masivo desde CSV (product_slug, quantity, transaction_type, reason, notes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := inventory.ParseBulkCSV(f, charset)
			if err != nil {
				return err
			}
			var uid *string
			if userID != "" {
				uid = &userID
			}
			return a.withUseCases(cmd.Context(), func(uc *bootstrap.UseCases) error {
				res := uc.Bulk.BulkAdjust(cmd.Context(), rows, uid)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "filas aplicadas: %d, con error: %d\n", res.SuccessCount, len(res.Errors))
				for _, e := range res.Errors {
					fmt.Fprintln(out, "  "+e.Message)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&charset, "charset", "utf-8", "codificación del archivo: utf-8, latin1, windows-1252")
	cmd.Flags().StringVar(&userID, "user", "", "usuario que queda registrado en el libro")
	return cmd
}

// --- summary ---

func newSummaryCmd(a *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Resumen del inventario",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withUseCases(cmd.Context(), func(uc *bootstrap.UseCases) error {
				s, err := uc.Queries.Summary(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(s)
				}
				fmt.Fprintf(out, "Productos:        %d\n", s.TotalProducts)
				fmt.Fprintf(out, "Unidades:         %d\n", s.TotalStock)
				fmt.Fprintf(out, "Valor:            %s\n", s.TotalValue.StringFixed(2))
				fmt.Fprintf(out, "Stock bajo (<%d): %d\n", s.LowStockThreshold, s.LowStockCount)
				fmt.Fprintf(out, "Agotados:         %d\n", s.OutOfStockCount)
				fmt.Fprintf(out, "Negativos:        %d\n", s.NegativeStockCount)
				fmt.Fprintf(out, "Alertas activas:  %d\n", s.ActiveAlerts)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "salida JSON")
	return cmd
}

// --- report ---

func newReportCmd(a *cli) *cobra.Command {
	var format, output, category, status string
	var threshold int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Exporta el reporte de niveles de stock (csv, pdf, xml)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := inventory.StockReportFilter{CategorySlug: category, Status: status}
			if cmd.Flags().Changed("threshold") {
				f.Threshold = &threshold
			}
			return a.withUseCases(cmd.Context(), func(uc *bootstrap.UseCases) error {
				rep, err := uc.Report.Export(cmd.Context(), f, format)
				if err != nil {
					return err
				}
				if output == "" {
					output = rep.Filename
				}
				if output == "-" {
					_, err = cmd.OutOrStdout().Write(rep.Content)
					return err
				}
				if err := os.WriteFile(output, rep.Content, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reporte escrito en %s (%d bytes)\n", output, len(rep.Content))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv, pdf o xml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "archivo de salida ('-' para stdout; vacío usa stock_report.<ext>)")
	cmd.Flags().StringVar(&category, "category", "", "slug de categoría")
	cmd.Flags().StringVar(&status, "status", "", "low, out o negative")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "umbral de stock bajo (defecto: configurado)")
	return cmd
}

// --- token ---

func newTokenCmd(a *cli) *cobra.Command {
	var role, userID string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT firmado (cuentas de servicio, pruebas)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := jwt.Generate(a.cfg.JWT.Secret, userID, role, a.cfg.JWT.Issuer, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "service", "admin, staff, service o customer")
	cmd.Flags().StringVar(&userID, "user", "checkout", "sujeto del token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "vigencia")
	return cmd
}

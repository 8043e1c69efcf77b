package postgres

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jhoicas/tienda-api/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica el esquema del inventario con golang-migrate.
type Migrator struct {
	m   *migrate.Migrate
	log *logger.Logger
}

// NewMigrator crea el migrador. path vacío usa las migraciones embebidas en el binario.
func NewMigrator(databaseURL, path string, log *logger.Logger) (*Migrator, error) {
	if log == nil {
		log = logger.Nop()
	}
	dbURL, err := pgx5URL(databaseURL)
	if err != nil {
		return nil, err
	}

	var m *migrate.Migrate
	if path == "" {
		src, err := iofs.New(migrationsFS, "migrations")
		if err != nil {
			return nil, fmt.Errorf("abrir migraciones embebidas: %w", err)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, dbURL)
		if err != nil {
			return nil, fmt.Errorf("crear migrador: %w", err)
		}
	} else {
		m, err = migrate.New("file://"+path, dbURL)
		if err != nil {
			return nil, fmt.Errorf("crear migrador: %w", err)
		}
	}
	return &Migrator{m: m, log: log.Component("migrate")}, nil
}

// pgx5URL cambia el esquema postgres:// por pgx5:// (driver pgx/v5 de golang-migrate).
func pgx5URL(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("DATABASE_URL inválida: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql", "pgx5":
		u.Scheme = "pgx5"
	default:
		return "", fmt.Errorf("esquema no soportado para migraciones: %q", u.Scheme)
	}
	return u.String(), nil
}

// Up aplica las migraciones pendientes.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up: %w", err)
	}
	version, dirty, _ := mg.Version()
	mg.log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Down revierte n migraciones (n <= 0 revierte todas).
func (mg *Migrator) Down(n int) error {
	var err error
	if n <= 0 {
		err = mg.m.Down()
	} else {
		err = mg.m.Steps(-n)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().Msg("nada que revertir")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down: %w", err)
	}
	mg.log.Info().Int("steps", n).Msg("migraciones revertidas")
	return nil
}

// Version versión actual del esquema (0 si no hay ninguna aplicada).
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration version: %w", err)
	}
	return version, dirty, nil
}

// Close libera la fuente y la conexión.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

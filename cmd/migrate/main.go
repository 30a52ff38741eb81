package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/urfave/cli/v2"

	"github.com/joao-fontenele/plantnet-market/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	app := &cli.App{
		Name:  "migrate",
		Usage: "manage the plantnet database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: withMigrator(logger, func(m *migrate.Migrate, _ *cli.Context) error {
					err := m.Up()
					if errors.Is(err, migrate.ErrNoChange) {
						logger.Info("no pending migrations")
						return nil
					}
					if err != nil {
						return fmt.Errorf("migration up failed: %w", err)
					}
					logger.Info("migrations applied successfully")
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: withMigrator(logger, func(m *migrate.Migrate, c *cli.Context) error {
					steps := c.Int("steps")
					if steps < 1 {
						return fmt.Errorf("steps must be positive, got %d", steps)
					}
					err := m.Steps(-steps)
					if errors.Is(err, migrate.ErrNoChange) {
						logger.Info("no migrations to rollback")
						return nil
					}
					if err != nil {
						return fmt.Errorf("migration down failed: %w", err)
					}
					logger.Info("migrations rolled back successfully", slog.Int("steps", steps))
					return nil
				}),
			},
			{
				Name:  "version",
				Usage: "print the applied schema version",
				Action: withMigrator(logger, func(m *migrate.Migrate, _ *cli.Context) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						logger.Info("no migrations applied yet")
						return nil
					}
					if err != nil {
						return fmt.Errorf("failed to get version: %w", err)
					}
					logger.Info("current migration version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
					return nil
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func withMigrator(logger *slog.Logger, fn func(*migrate.Migrate, *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadMigrate()
		if err != nil {
			return err
		}

		m, err := migrate.New(cfg.MigrationsPath, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		defer func() {
			if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
				logger.Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
			}
		}()

		return fn(m, c)
	}
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"review_proxy/internal/adapters/fixtures"
	"review_proxy/internal/adapters/observability"
	redisad "review_proxy/internal/adapters/redis"
	"review_proxy/internal/app"
	"review_proxy/internal/domain"
	"review_proxy/internal/shared"
	mysqlrepo "review_proxy/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := shared.Load()
	var (
		backend  string
		dir      string
		workers  int
		datasets []string
	)

	cmd := &cobra.Command{
		Use:          "seeder",
		Short:        "Copy mock review fixtures into redis or mysql",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
			ctx := cmd.Context()

			selected, err := pickDatasets(datasets)
			if err != nil {
				return err
			}

			dst, closeDst, err := openWriter(ctx, cfg, backend)
			if err != nil {
				return err
			}
			defer closeDst()

			log.Info().
				Str("backend", backend).
				Str("dir", dir).
				Int("workers", workers).
				Int("datasets", len(selected)).
				Msg("seeder starting")

			n, err := app.NewSeedService(fixtures.New(dir), dst).SeedAll(ctx, selected, workers)
			log.Info().Int("written", n).Msg("seeding completed")
			return err
		},
	}

	defBackend := cfg.FixtureBackend
	if defBackend == "file" {
		defBackend = "redis"
	}
	cmd.Flags().StringVar(&backend, "backend", defBackend, "target store: redis or mysql")
	cmd.Flags().StringVar(&dir, "dir", cfg.MockDataDir, "directory holding the fixture files")
	cmd.Flags().IntVar(&workers, "workers", 4, "datasets copied concurrently")
	cmd.Flags().StringSliceVar(&datasets, "dataset", nil, "dataset names to seed (default: all)")
	return cmd
}

func pickDatasets(names []string) ([]domain.Dataset, error) {
	if len(names) == 0 {
		return domain.Datasets, nil
	}
	out := make([]domain.Dataset, 0, len(names))
	for _, n := range names {
		ds, ok := domain.DatasetByName(n)
		if !ok {
			return nil, fmt.Errorf("unknown dataset %q", n)
		}
		out = append(out, ds)
	}
	return out, nil
}

func openWriter(ctx context.Context, cfg shared.Config, backend string) (domain.FixtureWriter, func(), error) {
	switch backend {
	case "redis":
		s := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db.Ping: %w", err)
		}
		repo := mysqlrepo.New(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("backend %q cannot be seeded (want redis or mysql)", backend)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/resguardo-civil/incident-reporting-service/internal/infra/config"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/database"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/logger"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/security"
	postgresrepo "github.com/resguardo-civil/incident-reporting-service/internal/repository/postgres"
	"github.com/resguardo-civil/incident-reporting-service/internal/usecase"
)

func main() {
	force := flag.Bool("force", false, "allow seeding a production environment")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() {
		_ = zlog.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, zlog)
	if err != nil {
		zlog.Fatal("init postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}); err != nil {
		zlog.Fatal("configure argon2", zap.Error(err))
	}

	repos := postgresrepo.NewRepositories(pool)

	result, err := usecase.NewSeedService(cfg, repos).Run(ctx, *force)
	if err != nil {
		zlog.Fatal("seed database", zap.Error(err))
	}

	zlog.Info("seed completed",
		zap.Int("users", result.Users),
		zap.Int("incidents", result.Incidents),
	)
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/brightclinic/practice-scheduling/internal/appointment"
	"github.com/brightclinic/practice-scheduling/internal/config"
	"github.com/brightclinic/practice-scheduling/internal/db"
	"github.com/brightclinic/practice-scheduling/internal/logging"
	redisclient "github.com/brightclinic/practice-scheduling/internal/redis"
	"github.com/brightclinic/practice-scheduling/internal/scheduling"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	logger.Info("noshow-worker starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.SweepInterval),
		zap.Duration("grace", cfg.NoShowGrace),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", zap.Error(err))
		}
	}()
	logger.Info("connected to Redis")

	repo := appointment.NewPgRepository(pgPool)
	locker := redisclient.NewRedisDoctorLocker(rdb, cfg.LockTTL)
	engine := scheduling.NewEngine(cfg.Location(), cfg.MaxLookaheadDays)
	svc := appointment.NewService(repo, locker, engine, cfg, logger)

	// Run once at startup
	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping noshow worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, logger *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	swept, err := svc.MarkOverdueNoShows(runCtx)
	if err != nil {
		logger.Error("noshow sweep error", zap.Error(err))
		return
	}
	logger.Info("noshow sweep complete",
		zap.Int("swept", swept),
		zap.Duration("took", time.Since(start)),
	)
}

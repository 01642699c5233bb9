package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/config"
	"github.com/Alishanbouraa/chickensap/internal/infra"
	"github.com/Alishanbouraa/chickensap/internal/repository"
	"github.com/Alishanbouraa/chickensap/internal/router"
	"github.com/Alishanbouraa/chickensap/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for async jobs (audit trail, report emails). Handlers are
	// wired here, the composition root, so the pool has full access to the
	// infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	smtpBreaker := infra.NewBreaker(5, 2, time.Minute)
	dispatcher := worker.NewDispatcher(rdb)
	auditRepo := repository.NewAuditRepository(db)

	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.Handlers{
		Audit: worker.NewAuditWorker(auditRepo),
		Email: worker.NewEmailWorker(mailer, smtpBreaker),
	})

	locker := infra.NewRedisLocker(rdb)
	app := router.New(cfg, db, rdb, locker, dispatcher)

	// Nightly close: reconcile every loaded truck, then email the summary.
	cronRunner, err := worker.StartReconcileCron(cfg.ReconcileCronSpec, worker.NightlyJobs{
		ReconcileAll: func(ctx context.Context, date time.Time) (int, error) {
			return app.Reconciliation.ReconcileAllForDate(ctx, "SYSTEM", date)
		},
		EmailDailyReport: app.Reports.EmailDailyReport,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule nightly reconciliation")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.Engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("chickensap backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	<-cronRunner.Stop().Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

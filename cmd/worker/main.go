package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/adapters/event"
	"github.com/khoahotran/pathwise/adapters/persistence"
	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/application/usecase/reconcile"
	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
	"github.com/khoahotran/pathwise/pkg/tracing"
)

const retryBackoff = 5 * time.Second

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger, err := logger.New(logger.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "pathwise-worker"})
	if err != nil {
		log.Fatalf("FATAL: cannot init logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Starting Pathwise reconcile worker...")

	tp, err := tracing.NewTracerProvider(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	if tp != nil {
		defer tp.Shutdown(context.Background())
	}

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Worker Use Case
	replayUC := reconcile.NewReplayUseCase(
		persistence.NewPostgresProfileReplayer(dbPool, appLogger),
		persistence.NewPostgresCourseReplayer(dbPool, appLogger),
		persistence.NewPostgresPathwayReplayer(dbPool, appLogger),
		appLogger,
	)

	// Kafka Consumer
	topic := event.ReconcileTopic(cfg)
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    topic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening", zap.String("topic", topic), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		l := appLogger.With(zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))

		var ev service.ReconcileEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			l.Error("Failed to unmarshal event, skipping", err)
			commitMessage(consumer, msg, l)
			continue
		}

		if !replay(ctx, replayUC, ev, l) {
			appLogger.Info("Worker stopped")
			return
		}
		commitMessage(consumer, msg, l)
	}
}

// replay retries a failing event in place so later offsets are never
// committed past it. It returns false only when ctx is cancelled, leaving
// the message uncommitted for redelivery.
func replay(ctx context.Context, uc *reconcile.ReplayUseCase, ev service.ReconcileEvent, l logger.Logger) bool {
	for {
		err := uc.Execute(ctx, ev)
		switch {
		case err == nil:
			return true
		case errors.Is(err, apperror.ErrValidation) ||
			errors.Is(err, apperror.ErrNotFound) ||
			errors.Is(err, apperror.ErrConflict):
			// The row is gone, newer than the event, or the event can never apply.
			l.Warn("Dropping unreplayable event", zap.Error(err))
			return true
		}

		l.Error("Replay failed, retrying", err, zap.Duration("backoff", retryBackoff))
		select {
		case <-time.After(retryBackoff):
		case <-ctx.Done():
			return false
		}
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, l logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		l.Error("Failed to commit message", err)
	}
}

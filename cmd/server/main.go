package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/adapters/event"
	httpAdapter "github.com/khoahotran/pathwise/adapters/http"
	"github.com/khoahotran/pathwise/adapters/llm"
	"github.com/khoahotran/pathwise/adapters/persistence"
	"github.com/khoahotran/pathwise/internal/application/store"
	authUC "github.com/khoahotran/pathwise/internal/application/usecase/auth"
	recommendUC "github.com/khoahotran/pathwise/internal/application/usecase/recommendation"
	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/pkg/auth"
	"github.com/khoahotran/pathwise/pkg/logger"
	"github.com/khoahotran/pathwise/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger, err := logger.New(logger.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "pathwise-api"})
	if err != nil {
		log.Fatalf("FATAL: cannot init logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Start Pathwise API Server...", zap.String("env", cfg.App.Env))

	tp, err := tracing.NewTracerProvider(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	if tp != nil {
		defer tp.Shutdown(context.Background())
	}

	// Infrastructure
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	deps := store.Deps{
		Cache:          persistence.NewRedisPreferenceCache(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.TTL),
		Logger:         appLogger,
		CallTimeout:    cfg.Store.CallTimeout,
		SessionIdleTTL: cfg.Store.SessionIdleTTL,
	}

	// Without Kafka, failed writes are still marked pending but nobody replays them.
	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("Kafka disabled, reconcile events will not be published", zap.Error(err))
	} else {
		defer kafkaClient.Close()
		deps.Publisher = kafkaClient
	}

	gateway, err := llm.NewRecommendationGateway(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init recommendation gateway", err)
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	sessions := store.NewManager(store.Repositories{
		Profiles: persistence.NewPostgresProfileRepo(dbPool, appLogger),
		Courses:  persistence.NewPostgresCourseRepo(dbPool, appLogger),
		Pathways: persistence.NewPostgresPathwayRepo(dbPool, appLogger),
	}, deps)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	registerUseCase := authUC.NewRegisterUseCase(userRepo, jwtSvc, appLogger)
	recommendUseCase := recommendUC.NewRecommendUseCase(gateway, cfg.LLM.Timeout, appLogger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ServiceName:       cfg.Tracing.ServiceName,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		Logger:            appLogger,
		AuthMiddleware:    httpAdapter.AuthMiddleware(jwtSvc, appLogger),
		AuthHandler:       httpAdapter.NewAuthHandler(loginUseCase, registerUseCase, sessions, appLogger),
		RecommendHandler:  httpAdapter.NewRecommendHandler(recommendUseCase, sessions, appLogger),
		ProfileHandler:    httpAdapter.NewProfileHandler(sessions, appLogger),
		CourseHandler:     httpAdapter.NewCourseHandler(sessions, appLogger),
		PathwayHandler:    httpAdapter.NewPathwayHandler(sessions, appLogger),
		CareerHandler:     httpAdapter.NewCareerHandler(sessions, appLogger),
		PreferenceHandler: httpAdapter.NewPreferenceHandler(sessions),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sessions.RunJanitor(ctx, time.Minute)

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", err)
	}
}
